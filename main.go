// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Main entrypoint for mediaanalyzer application

package main

import (
	"fmt"
	"os"

	"github.com/evolution-gaming/mediaanalyzer/internal/logging"
)

// root represents top level of mediaanalyzer command, including dispatching to subcommands.
func root(args []string) error {
	usage := `mediaanalyzer - media file metadata analyzer

Usage:

    mediaanalyzer <command> [arguments] [-h|-help]

The commands are:

    analyze     print metadata of a single media file as JSON
    report      analyze many files and write JSON, CSV reports and bitrate plot
    dump-conf   output actual application configuration
    version     print mediaanalyzer version and exit

Use "mediaanalyzer <command> -h|-help" for more information about command.`

	if len(args) < 1 {
		fmt.Println(usage)
		return &AppError{msg: "please, specify command", exitCode: 2}
	}

	switch args[0] {
	case "analyze", "analyse":
		return CreateAnalyzeCommand().Run(args[1:])
	case "report":
		return CreateReportCommand().Run(args[1:])
	case "dump-conf", "dump":
		return CreateDumpConfCommand().Run(args[1:])
	case "version":
		return CreateVersionCommand().Run(args[1:])
	case "-h", "-help", "--help", "?":
		fmt.Println(usage)
		return &AppError{
			exitCode: 2,
		}
	default:
		// No commands were matched at this point, so bail out with default usage message.
		fmt.Println(usage)
		return &AppError{
			msg:      "unknown command/flag",
			exitCode: 2,
		}
	}
}

func main() {
	// Enable info logger by default and early enough.
	logging.EnableInfoLogger()

	if err := root(os.Args[1:]); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintf(os.Stderr, "%v\n", msg)
		}
		switch e := err.(type) {
		case *AppError:
			os.Exit(e.ExitCode())
		default:
			os.Exit(1)
		}
	}
	os.Exit(0)
}
