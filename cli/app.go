// Package cli implements drivesim, a command line tool that runs the motion-control core against a
// simulated drivetrain.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	generalFlagConfig  = "config"
	generalFlagDebug   = "debug"
	generalFlagLogFile = "log-file"

	simFlagDegrees   = "degrees"
	simFlagRelative  = "relative"
	simFlagDistance  = "distance"
	simFlagSpeed     = "speed"
	simFlagDrift     = "drift"
	simFlagPoints    = "points"
	simFlagRoutine   = "routine"
	simFlagHistogram = "histogram"
)

var app = &cli.App{
	Name:            "drivesim",
	Usage:           "run drive control against a simulated drivetrain",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    generalFlagConfig,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE`",
		},
		&cli.BoolFlag{
			Name:    generalFlagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.StringFlag{
			Name:  generalFlagLogFile,
			Usage: "also write logs to `FILE`, rotated as it grows",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "turn",
			Usage:     "turn in place to a heading",
			UsageText: "drivesim turn --degrees <degrees> [--relative]",
			Flags: []cli.Flag{
				&cli.Float64Flag{
					Name:     simFlagDegrees,
					Usage:    "target heading, clockwise positive",
					Required: true,
				},
				&cli.BoolFlag{
					Name:  simFlagRelative,
					Usage: "turn by degrees instead of to them",
				},
			},
			Action: TurnAction,
		},
		{
			Name:      "drive",
			Usage:     "drive a heading-held straight line",
			UsageText: "drivesim drive --distance <units> [--speed <speed>] [--drift <degrees>] [--histogram <bins>]",
			Flags: []cli.Flag{
				&cli.Float64Flag{
					Name:     simFlagDistance,
					Usage:    "distance in configured units, negative drives backward",
					Required: true,
				},
				&cli.IntFlag{
					Name:  simFlagSpeed,
					Usage: "base speed",
					Value: 80,
				},
				&cli.Float64Flag{
					Name:  simFlagDrift,
					Usage: "simulated chassis pull per cycle, in degrees",
				},
				&cli.IntFlag{
					Name:  simFlagHistogram,
					Usage: "print a histogram of heading samples with `N` bins",
				},
			},
			Action: DriveAction,
		},
		{
			Name:      "profile",
			Usage:     "print the velocity profile of a move, or drive it with --run",
			UsageText: "drivesim profile --distance <units> [--points <n>] [--run]",
			Flags: []cli.Flag{
				&cli.Float64Flag{
					Name:     simFlagDistance,
					Usage:    "distance in configured units",
					Required: true,
				},
				&cli.IntFlag{
					Name:  simFlagPoints,
					Usage: "number of samples along the move",
					Value: 11,
				},
				&cli.BoolFlag{
					Name:  "run",
					Usage: "drive the move in simulation",
				},
			},
			Action: ProfileAction,
		},
		{
			Name:      "auto",
			Usage:     "run an autonomous routine in simulation",
			UsageText: "drivesim auto [--routine <name>]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  simFlagRoutine,
					Usage: "routine to run",
					Value: "default",
				},
			},
			Action: AutoAction,
		},
		{
			Name:   "schema",
			Usage:  "print the configuration JSON schema",
			Action: SchemaAction,
		},
	},
}

// NewApp returns the app with its writers set.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
