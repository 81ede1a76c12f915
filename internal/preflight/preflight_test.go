package preflight

import (
	"testing"

	"github.com/bookforge/bookforge/internal/config"
)

func TestRun_LocalProviderNeedsNoCredentials(t *testing.T) {
	cfg := config.Default()
	report := Run(cfg, t.TempDir())

	var found bool
	for _, c := range report.Checks {
		if c.Name == "embedding provider" {
			found = true
			if c.Status != Pass {
				t.Errorf("local embedding check = %s (%s), want ok", c.Status, c.Detail)
			}
		}
	}
	if !found {
		t.Error("report missing embedding provider check")
	}
}

func TestRun_RemoteProviderWithoutKeyFails(t *testing.T) {
	cfg := config.Default()
	cfg.Embedding.Provider = "volcengine"
	cfg.Embedding.APIKey = ""

	report := Run(cfg, t.TempDir())

	for _, c := range report.Checks {
		if c.Name == "embedding provider" && c.Status != Fail {
			t.Errorf("missing-key embedding check = %s, want fail", c.Status)
		}
	}
}

func TestCheckWritable(t *testing.T) {
	c := checkWritable(t.TempDir())
	if c.Status != Pass {
		t.Errorf("writable temp dir check = %s (%s), want ok", c.Status, c.Detail)
	}

	c = checkWritable("/nonexistent/definitely/missing")
	if c.Status != Fail {
		t.Errorf("unwritable dir check = %s, want fail", c.Status)
	}
}

func TestCheckBinary_Missing(t *testing.T) {
	c := checkBinary("fake tool", "definitely-not-a-real-binary-name", "hint")
	if c.Status != Fail {
		t.Errorf("missing binary check = %s, want fail", c.Status)
	}

	c = checkBinaryWarn("fake tool", "definitely-not-a-real-binary-name", "hint")
	if c.Status != Warn {
		t.Errorf("missing optional binary check = %s, want warn", c.Status)
	}
}

func TestReport_Ready(t *testing.T) {
	r := &Report{Checks: []Check{
		{Status: Pass}, {Status: Warn}, {Status: Fail}, {Status: Fail},
	}}
	if !r.Ready() {
		t.Error("report with 2 failures should still be ready")
	}

	r.Checks = append(r.Checks, Check{Status: Fail})
	if r.Ready() {
		t.Error("report with 3 failures should not be ready")
	}
	if r.Failed() != 3 {
		t.Errorf("Failed() = %d, want 3", r.Failed())
	}
}
