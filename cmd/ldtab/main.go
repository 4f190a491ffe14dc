package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/abrezinsky/ldtab/internal/app"
	"github.com/abrezinsky/ldtab/internal/config"
	"github.com/abrezinsky/ldtab/internal/logger"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

var (
	version = "dev"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:    "ldtab",
		Usage:   "Lincoln-Douglas debate tournament server",
		Version: version,
		Commands: []*cli.Command{
			serveCommand(),
			standingsCommand(),
			seedCommand(),
		},
	}
}

func printBanner(w io.Writer) {
	fmt.Fprintf(w, "\n  %s╔══════════════════════════════╗%s\n", cyan, reset)
	fmt.Fprintf(w, "  %s║%s   ldtab  %-20s%s║%s\n", cyan, yellow, version, cyan, reset)
	fmt.Fprintf(w, "  %s╚══════════════════════════════╝%s\n\n", cyan, reset)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP and websocket server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "ldtab.yaml", Usage: "YAML config file (ignored if missing)", EnvVars: []string{"LDTAB_CONFIG"}},
			&cli.IntFlag{Name: "port", Usage: "HTTP port"},
			&cli.StringFlag{Name: "db", Usage: "SQLite database path"},
			&cli.BoolFlag{Name: "memory", Usage: "keep all state in memory"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "no-banner", Usage: "skip the startup banner"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if err := applyServeFlags(c, cfg); err != nil {
				return err
			}

			if !c.Bool("no-banner") {
				printBanner(c.App.Writer)
			}

			appLog := logger.NewWithOptions(logger.ParseLevel(cfg.Log.Level), logger.ParseFormat(cfg.Log.Format), c.App.ErrWriter)
			if cfg.Log.HTTP {
				appLog.EnableHTTPLogging()
			}

			a, err := app.New(cfg, appLog)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
}

// applyServeFlags lets explicit command-line flags win over the config file
func applyServeFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("port") {
		defaultURL := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
		cfg.Server.Port = c.Int("port")
		if cfg.Server.BaseURL == defaultURL {
			cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
		}
	}
	if c.IsSet("db") {
		cfg.Store.Driver = config.DriverSQLite
		cfg.Store.DSN = c.String("db")
	}
	if c.Bool("memory") {
		cfg.Store.Driver = config.DriverMemory
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	return cfg.Validate()
}
