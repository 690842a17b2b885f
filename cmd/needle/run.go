package main

import (
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/needle-lang/needle/suite"
)

var (
	keepGoing bool
	statsFlag bool
)

var runCmd = &cobra.Command{
	Use:   "run SUITEFILE",
	Short: "Run a check suite",
	Args:  cobra.MinimumNArgs(1),
	Run:   runCommand,
}

func init() {
	runCmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Show every failing check instead of only the first")
	runCmd.Flags().BoolVar(&statsFlag, "stats", false, "Print evaluation statistics after the report")
}

func runCommand(cmd *cobra.Command, args []string) {
	filename := args[0]
	manifest, err := suite.LoadManifestFromFile(filename)
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't load manifest")
	}
	runner, err := manifest.BuildRunner()
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't build runner for manifest")
	}
	if err := runner.Initialize(); err != nil {
		log.Fatal().Err(err).Msg("Couldn't compile suite programs")
	}

	fmt.Fprintln(os.Stderr, color.Cyan.Sprint("Running checks..."))

	report, err := runner.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Error while running checks")
	}

	fmt.Fprint(os.Stderr, suite.FormatReport(report))

	if !report.Success {
		for _, res := range report.Results {
			if res.Passed {
				continue
			}
			fmt.Fprint(os.Stderr, suite.FormatCheckFailure(res))
			if !keepGoing {
				break
			}
		}
	}

	if statsFlag {
		fmt.Fprint(os.Stderr, suite.FormatStatistics(report.Statistics))
	}

	if report.Success {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, color.Green.Sprint("✓ All checks passed!"))
	} else {
		os.Exit(1)
	}
}
