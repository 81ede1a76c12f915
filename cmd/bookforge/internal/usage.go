package internal

import (
	"fmt"
	"os"
	"strings"
)

const Version = "0.3.0"

// PrintUsage writes the top-level usage and subcommand list to stderr
func PrintUsage() {
	fmt.Fprintf(os.Stderr, `bookforge - Evidence-Based Book Writing Pipeline

Version: %s

USAGE:
    bookforge [global options] <command> [command options]

GLOBAL OPTIONS:
    -config <path>
        Path to config file (default: ~/.bookforge/config/bookforge.yaml)

    -book <path>
        Book project directory (default: current directory)

    -v, -version
        Show version information

    -h, -help
        Show this help message

COMMANDS:
    init
        Scaffold a new book project

    research
        Search literature and synthesize findings

    design-experiment
        Design an experimental protocol for a hypothesis

    write-chapter
        Draft a chapter with context from earlier chapters

    validate
        Check the manuscript for logical rigor

    humanize
        Rewrite drafted chapters for narrative flow

    export
        Assemble chapters and export the manuscript

    search
        Search indexed chapters (keyword + similarity)

    stats
        Show chapter index statistics

    preflight
        Check the environment before a book run

EXAMPLES:
    # Start a new book
    bookforge init -title "Deep Focus" -author "J. Doe" -topic productivity

    # Gather evidence
    bookforge research -query "context switching cost"

    # Draft chapter 4 with coherence context
    bookforge write-chapter -chapter 4 -title "Interruptions" -outline outline.md

    # Check rigor, polish, export
    bookforge validate -strict
    bookforge humanize -chapter 4
    bookforge export -format pdf

For detailed help on each command, use:
    bookforge <command> -help
`, Version)
}

// StringList is a flag.Value that collects repeated string flags
type StringList []string

func (s *StringList) String() string {
	return strings.Join(*s, ",")
}

func (s *StringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}
