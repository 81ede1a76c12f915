package experiment

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bookforge/bookforge/internal/aiclient"
)

type scriptedProvider struct {
	response string
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) Generate(ctx context.Context, prompt string, opts aiclient.Options) (string, error) {
	return s.response, nil
}

func TestRun_TemplateFallbackWithoutProvider(t *testing.T) {
	bookDir := t.TempDir()
	d := NewDesigner(nil, aiclient.DefaultOptions())

	result, err := d.Run(context.Background(), bookDir, "Pairing reduces defect rates", 30, 6)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !result.FromTemplate {
		t.Error("expected template fallback without a provider")
	}
	if result.Design.DesignType != "A/B Test" {
		t.Errorf("template design type = %q, want A/B Test", result.Design.DesignType)
	}
	if result.Design.Participants != 30 || result.Design.DurationWeeks != 6 {
		t.Errorf("design carries %d participants over %d weeks, want 30 over 6",
			result.Design.Participants, result.Design.DurationWeeks)
	}

	for _, path := range []string{result.ProtocolPath, result.ConfigPath, result.TemplatePath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing output file %s: %v", path, err)
		}
	}

	wantDir := filepath.Join(bookDir, "outputs", "experiment_design")
	if filepath.Dir(result.ProtocolPath) != wantDir {
		t.Errorf("protocol written to %s, want %s", filepath.Dir(result.ProtocolPath), wantDir)
	}
}

func TestRun_ParsesStructuredAIResponse(t *testing.T) {
	response := "```yaml\n" +
		"hypothesis: Pairing reduces defect rates\n" +
		"participants: 30\n" +
		"duration_weeks: 6\n" +
		"design_type: Repeated measures\n" +
		"dependent_variables:\n" +
		"  - name: defect_density\n" +
		"    measurement: static analysis\n" +
		"    unit: defects/kloc\n" +
		"```"

	d := NewDesigner(&scriptedProvider{response: response}, aiclient.DefaultOptions())

	result, err := d.Run(context.Background(), t.TempDir(), "Pairing reduces defect rates", 30, 6)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.FromTemplate {
		t.Error("structured AI response should not fall back to template")
	}
	if result.Design.DesignType != "Repeated measures" {
		t.Errorf("design type = %q, want parsed AI value", result.Design.DesignType)
	}

	data, err := os.ReadFile(result.TemplatePath)
	if err != nil {
		t.Fatalf("reading data template: %v", err)
	}
	if !strings.Contains(string(data), "defect_density") {
		t.Errorf("data template missing dependent variable column: %q", string(data))
	}
}

func TestRun_UnparseableAIResponseKeepsProse(t *testing.T) {
	d := NewDesigner(&scriptedProvider{response: "A long prose design with no YAML."}, aiclient.DefaultOptions())

	result, err := d.Run(context.Background(), t.TempDir(), "Hypothesis", 10, 2)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// Structured config falls back to the template, but the protocol
	// document keeps the full AI prose
	data, err := os.ReadFile(result.ProtocolPath)
	if err != nil {
		t.Fatalf("reading protocol: %v", err)
	}
	if !strings.Contains(string(data), "A long prose design") {
		t.Errorf("protocol missing AI prose:\n%s", string(data))
	}
	if result.Design.DesignType != "A/B Test" {
		t.Errorf("structured design = %q, want template fallback", result.Design.DesignType)
	}
}

func TestRun_RequiresHypothesis(t *testing.T) {
	d := NewDesigner(nil, aiclient.DefaultOptions())
	if _, err := d.Run(context.Background(), t.TempDir(), "  ", 10, 2); err == nil {
		t.Error("Run() without hypothesis succeeded, want error")
	}
}

func TestDataTemplate(t *testing.T) {
	design := TemplateDesign("h", 10, 4)
	csv := DataTemplate(design)

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 2 {
		t.Fatalf("template has %d lines, want header + example", len(lines))
	}
	if !strings.HasPrefix(lines[0], "participant_id,group,week,date,") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(lines[0], ",") != strings.Count(lines[1], ",") {
		t.Errorf("example row column count differs from header: %q vs %q", lines[0], lines[1])
	}
}
