package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/urfave/cli/v2"

	"github.com/abrezinsky/ldtab/internal/logger"
	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository"
	"github.com/abrezinsky/ldtab/internal/services"
)

// cliUserID identifies maintenance commands in service logs
const cliUserID = "ldtab-cli"

func dbFlag() cli.Flag {
	return &cli.StringFlag{Name: "db", Value: "ldtab.db", Usage: "SQLite database path"}
}

func tournamentFlag() cli.Flag {
	return &cli.StringFlag{Name: "tournament", Aliases: []string{"t"}, Required: true, Usage: "tournament code"}
}

// openTournament opens the database and resolves the --tournament code
func openTournament(c *cli.Context, log logger.Logger) (*repository.Repository, *models.Tournament, error) {
	repo, err := repository.New(c.String("db"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	t, err := services.NewTournamentService(log, repo, nil).Get(c.Context, c.String("tournament"))
	if err != nil {
		repo.Close()
		return nil, nil, fmt.Errorf("tournament %s: %w", c.String("tournament"), err)
	}
	return repo, t, nil
}

func commandLogger(c *cli.Context) logger.Logger {
	return logger.NewWithOptions(slog.LevelWarn, logger.FormatText, c.App.ErrWriter)
}

func standingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "print a tournament's standings",
		Flags: []cli.Flag{
			dbFlag(),
			tournamentFlag(),
			&cli.StringFlag{Name: "xlsx", Usage: "also write the standings workbook to this file"},
		},
		Action: func(c *cli.Context) error {
			log := commandLogger(c)
			repo, t, err := openTournament(c, log)
			if err != nil {
				return err
			}
			defer repo.Close()

			rows, err := services.NewStandingsService(log, repo).StandingsFor(c.Context, t.ID)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "%s (%s)\n\n", t.Name, t.ID)
			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tDEBATER\tW\tL\tSTATUS")
			for i, r := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", i+1, r.Name, r.Wins, r.Losses, r.Status)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if path := c.String("xlsx"); path != "" {
				data, err := services.StandingsWorkbook(rows)
				if err != nil {
					return fmt.Errorf("building workbook: %w", err)
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				fmt.Fprintf(c.App.Writer, "\nWrote %s\n", path)
			}
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "add demo debaters and judges to a tournament",
		Flags: []cli.Flag{
			dbFlag(),
			tournamentFlag(),
			&cli.IntFlag{Name: "debaters", Value: 8, Usage: "number of debaters"},
			&cli.IntFlag{Name: "judges", Value: 3, Usage: "number of judges"},
			&cli.Uint64Flag{Name: "seed", Usage: "faker seed for repeatable names (0 for random)"},
		},
		Action: func(c *cli.Context) error {
			log := commandLogger(c)
			repo, t, err := openTournament(c, log)
			if err != nil {
				return err
			}
			defer repo.Close()

			seeder := services.NewSeedService(log, repo, gofakeit.New(c.Uint64("seed")), nil)
			caller := services.Caller{UserID: cliUserID, Name: "ldtab", Role: models.RoleAdmin, TournamentID: t.ID}
			created, err := seeder.SeedDemo(c.Context, caller, c.Int("debaters"), c.Int("judges"))
			if err != nil {
				return err
			}

			for _, p := range created {
				fmt.Fprintf(c.App.Writer, "%-8s %s\n", p.Role, p.Name)
			}
			fmt.Fprintf(c.App.Writer, "Added %d profiles to %s\n", len(created), t.ID)
			return nil
		},
	}
}
