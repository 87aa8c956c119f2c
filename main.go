package main

import (
	"fmt"
	"os"

	"github.com/gerunddev/phasedocs/internal/commands"
	"github.com/gerunddev/phasedocs/internal/config"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "generate", "gen":
		commands.Generate(os.Args[2:])
	case "convert":
		commands.Convert(os.Args[2:])
	case "diff":
		commands.Diff(os.Args[2:])
	case "status":
		commands.Status(os.Args[2:])
	case "list", "ls":
		commands.List(os.Args[2:])
	case "init":
		commands.Init(os.Args[2:])
	case "version", "-v", "--version":
		fmt.Printf("phasedocs v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := fmt.Sprintf(`phasedocs - Generate the project phase pages from markdown

Usage:
  phasedocs <command> [options]

Commands:
  generate    Convert phase documents into HTML pages
  convert     Print the HTML fragment for one markdown file
  diff        Show what generate would change
  status      Show the state of every page
  list        List the configured phases
  init        Write a default phasedocs.yaml
  version     Show version information
  help        Show this help message

Options:
  --config <path>   Use this config file
  --phase <n>       Limit to phase n (repeatable, or 1,2,3)
  --plain           Print plain lines instead of the progress display
  --anchor <text>   Slice convert input from this heading
  --balanced        Close each section before the next one
  --escape-code     HTML-escape fenced code
  --force           Let init overwrite an existing file

Examples:
  phasedocs generate
  phasedocs generate --phase 2 --plain
  phasedocs convert docs/03-fase-2-tickets-soporte.md --anchor "## Objetivo"
  phasedocs diff --phase 1
  phasedocs status
  phasedocs init

Configuration:
  Config file: %s
  State file:  %s
`, config.ConfigPath(), config.StateFilePath())
	fmt.Print(usage)
}
