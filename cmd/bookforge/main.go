package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bookforge/bookforge/cmd/bookforge/internal"
	"github.com/bookforge/bookforge/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		internal.PrintUsage()
		os.Exit(1)
	}

	configPath := ""
	bookPath := ""
	args := os.Args[1:]

	// Handle special flags that don't require a subcommand
	for _, arg := range args {
		if arg == "-h" || arg == "-help" || arg == "--help" {
			internal.PrintUsage()
			os.Exit(0)
		}
		if arg == "-v" || arg == "-version" || arg == "--version" {
			fmt.Printf("bookforge version %s\n", internal.Version)
			os.Exit(0)
		}
	}

	validSubcommands := map[string]bool{
		"init":              true,
		"research":          true,
		"design-experiment": true,
		"write-chapter":     true,
		"validate":          true,
		"humanize":          true,
		"export":            true,
		"search":            true,
		"stats":             true,
		"preflight":         true,
	}

	// Find the subcommand (first argument that is a valid subcommand)
	subcommandIndex := -1
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			if validSubcommands[arg] {
				subcommandIndex = i
				break
			}
			// Not a known subcommand, might be a value for a flag
		}
	}

	if subcommandIndex == -1 {
		fmt.Fprintf(os.Stderr, "Error: No subcommand specified\n\n")
		internal.PrintUsage()
		os.Exit(1)
	}

	// Parse global flags (before subcommand)
	globalFlags := args[:subcommandIndex]
	for i := 0; i < len(globalFlags); i++ {
		flag := globalFlags[i]
		if flag == "-config" || flag == "--config" {
			if i+1 < len(globalFlags) {
				configPath = globalFlags[i+1]
				i++
			}
		} else if flag == "-book" || flag == "--book" {
			if i+1 < len(globalFlags) {
				bookPath = globalFlags[i+1]
				i++
			}
		} else if strings.HasPrefix(flag, "-") {
			fmt.Fprintf(os.Stderr, "Error: Unknown global flag: %s\n\n", flag)
			internal.PrintUsage()
			os.Exit(1)
		}
	}

	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		if config.IsConfigNotFound(err) {
			if notFoundErr, ok := err.(*config.ConfigNotFoundError); ok {
				created, createErr := config.WriteDefaultTemplate(notFoundErr.RequestedPath)
				if createErr == nil && created {
					fmt.Fprintf(os.Stderr, "Created default config at %s\n", notFoundErr.RequestedPath)
					fmt.Fprintln(os.Stderr, "Edit it if needed and rerun the command.")
					os.Exit(1)
				}
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
			internal.PrintConfigExample()
			os.Exit(1)
		}
		log.Fatalf("Failed to load config: %v\n", err)
	}

	bookRoot, err := internal.ResolveBookRoot(bookPath)
	if err != nil {
		log.Fatalf("Failed to resolve book directory: %v\n", err)
	}

	subcommand := args[subcommandIndex]
	subcommandArgs := args[subcommandIndex+1:]

	if err := internal.SetupLogging(subcommand, bookRoot); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize log file: %v\n", err)
	}

	switch subcommand {
	case "init":
		handleInit(bookRoot, subcommandArgs)
	case "research":
		handleResearch(cfg, bookRoot, subcommandArgs)
	case "design-experiment":
		handleDesignExperiment(cfg, bookRoot, subcommandArgs)
	case "write-chapter":
		handleWriteChapter(cfg, bookRoot, subcommandArgs)
	case "validate":
		handleValidate(cfg, bookRoot, subcommandArgs)
	case "humanize":
		handleHumanize(cfg, bookRoot, subcommandArgs)
	case "export":
		handleExport(cfg, bookRoot, subcommandArgs)
	case "search":
		handleSearch(cfg, bookRoot, subcommandArgs)
	case "stats":
		handleStats(cfg, bookRoot, subcommandArgs)
	case "preflight":
		handlePreflight(cfg, bookRoot, subcommandArgs)
	default:
		fmt.Printf("Unknown subcommand: %s\n\n", subcommand)
		internal.PrintUsage()
		os.Exit(1)
	}
}
