// Package preflight checks the host environment before a book run:
// which AI CLIs and export tools are on PATH, and whether the working
// directory is writable.
package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/bookforge/bookforge/internal/config"
)

// Status classifies a single check result
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "ok"
	case Warn:
		return "warn"
	default:
		return "fail"
	}
}

// Check is one environment check result
type Check struct {
	Name   string
	Status Status
	Detail string
}

// Report is the full check run
type Report struct {
	Checks []Check
}

// Failed counts failing checks
func (r *Report) Failed() int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == Fail {
			n++
		}
	}
	return n
}

// Ready reports whether the run may proceed. A couple of failures are
// tolerated: most commands degrade rather than abort.
func (r *Report) Ready() bool {
	return r.Failed() <= 2
}

// Run executes all checks against the configuration and the given
// working directory.
func Run(cfg *config.Config, workDir string) *Report {
	report := &Report{}

	report.add(checkBinary("claude CLI", binOr(cfg.Generation.ClaudeBin, "claude"),
		"install with: npm install -g @anthropic-ai/claude-cli"))
	report.add(checkBinary("gemini CLI", binOr(cfg.Generation.GeminiBin, "gemini"),
		"install the Gemini CLI for provider fallback"))

	report.add(checkPandoc(binOr(cfg.Export.PandocBin, "pandoc"), cfg.Export.PDFEngine))
	report.add(checkBinaryWarn("git", "git", "version control recommended for manuscripts"))
	report.add(checkWritable(workDir))
	report.add(checkEmbedding(cfg))

	return report
}

func (r *Report) add(c Check) {
	r.Checks = append(r.Checks, c)
}

func binOr(bin, fallback string) string {
	if bin != "" {
		return bin
	}
	return fallback
}

func checkBinary(name, bin, hint string) Check {
	if _, err := exec.LookPath(bin); err != nil {
		return Check{Name: name, Status: Fail, Detail: fmt.Sprintf("%s not found; %s", bin, hint)}
	}
	return Check{Name: name, Status: Pass, Detail: bin + " found"}
}

// checkBinaryWarn is for tools whose absence never blocks a run
func checkBinaryWarn(name, bin, hint string) Check {
	if _, err := exec.LookPath(bin); err != nil {
		return Check{Name: name, Status: Warn, Detail: fmt.Sprintf("%s not found; %s", bin, hint)}
	}
	return Check{Name: name, Status: Pass, Detail: bin + " found"}
}

func checkPandoc(pandocBin, pdfEngine string) Check {
	if _, err := exec.LookPath(pandocBin); err != nil {
		return Check{
			Name:   "export tools",
			Status: Warn,
			Detail: pandocBin + " not found; only markdown export will work",
		}
	}
	if pdfEngine == "" {
		pdfEngine = "xelatex"
	}
	if _, err := exec.LookPath(pdfEngine); err != nil {
		return Check{
			Name:   "export tools",
			Status: Warn,
			Detail: fmt.Sprintf("pandoc found but %s missing; PDF export will fail", pdfEngine),
		}
	}
	return Check{Name: "export tools", Status: Pass, Detail: "pandoc and " + pdfEngine + " found"}
}

func checkWritable(dir string) Check {
	if dir == "" {
		dir = "."
	}
	probe := filepath.Join(dir, ".bookforge-write-probe")
	if err := os.WriteFile(probe, []byte("probe"), 0644); err != nil {
		return Check{Name: "write permissions", Status: Fail, Detail: fmt.Sprintf("cannot write to %s: %v", dir, err)}
	}
	os.Remove(probe)
	return Check{Name: "write permissions", Status: Pass, Detail: "can write to " + dir}
}

func checkEmbedding(cfg *config.Config) Check {
	switch cfg.Embedding.Provider {
	case "", "local":
		return Check{Name: "embedding provider", Status: Pass, Detail: "local provider needs no credentials"}
	case "openai":
		if cfg.Embedding.OpenAIAPIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
			return Check{Name: "embedding provider", Status: Fail, Detail: "openai provider configured but no API key set"}
		}
	case "volcengine":
		if cfg.Embedding.APIKey == "" {
			return Check{Name: "embedding provider", Status: Fail, Detail: "volcengine provider configured but no API key set"}
		}
	default:
		return Check{Name: "embedding provider", Status: Fail, Detail: "unknown provider " + cfg.Embedding.Provider}
	}
	return Check{Name: "embedding provider", Status: Pass, Detail: cfg.Embedding.Provider + " credentials present"}
}
