// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/carekeep/internal/models"
)

var datasetUsage = "<" + strings.Join(models.Datasets, "|") + ">"

func setFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "set",
		Aliases: []string{"s"},
		Usage:   "Field assignment key=value; values are parsed as JSON when possible",
	}
}

// setupCommand handles setup operations for config, database and legacy data.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the local store database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "migrate-legacy",
				Usage:  "Move data saved before per-user storage into the signed-in account",
				Action: r.SetupMigrateLegacy,
			},
		},
	}
}

// authCommand handles session operations against the collaborator
func authCommand(r *Runner) *cli.Command {
	credentialFlags := func(name bool) []cli.Flag {
		flags := []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", Sources: cli.EnvVars("CAREKEEP_PASSWORD")},
		}
		if name {
			flags = append(flags, &cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name"})
		}
		return flags
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the signed-in session",
		Commands: []*cli.Command{
			{
				Name:   "signup",
				Usage:  "Create an account and sign in",
				Flags:  credentialFlags(true),
				Action: r.AuthSignup,
			},
			{
				Name:   "login",
				Usage:  "Sign in and save the session",
				Flags:  credentialFlags(false),
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the saved session",
				Action: r.AuthLogout,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in identity and its storage namespace",
				Action: r.AuthWhoami,
			},
		},
	}
}

// syncCommand loads every dataset in parallel
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "sync",
		Usage:  "Load every dataset from the collaborator, falling back to saved data",
		Action: r.Sync,
	}
}

func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List the records of a dataset",
		ArgsUsage: datasetUsage,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (text, markdown, csv, json)",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
		},
		Action: r.List,
	}
}

func addCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a record",
		ArgsUsage: datasetUsage,
		Flags:     []cli.Flag{setFlag()},
		Action:    r.Add,
	}
}

func editCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Update fields of a record",
		ArgsUsage: datasetUsage + " <id>",
		Flags:     []cli.Flag{setFlag()},
		Action:    r.Edit,
	}
}

func removeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Aliases:   []string{"delete"},
		Usage:     "Delete a record",
		ArgsUsage: datasetUsage + " <id>",
		Action:    r.Remove,
	}
}

func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Show totals for a dataset",
		ArgsUsage: datasetUsage,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.Stats,
	}
}

func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "Show a saved location on a map",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "print", Usage: "Print the map link instead of opening a browser"},
		},
		Action: r.Open,
	}
}

// tuiCommand returns the top-level TUI command for browsing one dataset.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"ui"},
		Usage:     "Browse a dataset interactively",
		ArgsUsage: datasetUsage,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-file", Usage: "Where TUI logs are written", Value: "./tmp/carekeep-tui.log"},
		},
		Action: r.TUI,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the reference REST collaborator for development",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (defaults to server.host:server.port)"},
		},
		Action: r.Serve,
	}
}
