package main

import (
	"fmt"
	"os"
)

const usageText = `liz is a keyboard-shortcut launcher.

Usage:
  liz <command> [flags]

Commands:
  play     run one launcher command and print the JSON response
  serve    answer JSON commands on stdin, one per line
  encode   print the event sequence for shortcut text
  search   list shortcuts matching a query
  show     render one shortcut
  copy     copy a shortcut's keys to the clipboard
  convert  turn a markdown cheat sheet into a user sheet
  config   print the rhythm configuration (effective or defaults)
  ui       run the terminal launcher
  help     show help

Flags:
  -h, --help   show help

Environment:
  LIZ_DATA_DIR   data directory (default: <user config dir>/liz)

Examples:
  liz play new_id
  liz play --dry-run execute 7b0c6b43-4d3b-4f6e-9f0a-1d2c3b4a5e6f
  liz encode "ctrl+shift+p [STR]+ hello[STR] enter"
  liz search --format "#description | #shortcut" vim
  liz convert --app Blender blender.md blender.json
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	wiring := defaultCommandWiring(os.Stdin, os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
