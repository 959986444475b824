// slotnik-report renders the day book for one date as an Excel workbook
// and, when configured, mirrors the day to Google Sheets. Meant to run
// from cron after close of business.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"slotnik/internal/config"
	"slotnik/internal/export"
	"slotnik/internal/sheets"
	"slotnik/internal/store"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	var (
		dateFlag = flag.String("date", "", "business date YYYY-MM-DD (default today)")
		outFlag  = flag.String("out", "", "output .xlsx path (default stdout)")
		mirror   = flag.Bool("mirror", false, "also mirror the day to Google Sheets")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("SLOTNIK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if *dateFlag != "" {
		if date, err = time.Parse("2006-01-02", *dateFlag); err != nil {
			logger.Fatal().Err(err).Msg("bad -date")
		}
	}

	st, err := store.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer st.Close()

	ctx := context.Background()

	out := os.Stdout
	if *outFlag != "" {
		if out, err = os.Create(*outFlag); err != nil {
			logger.Fatal().Err(err).Msg("create output file")
		}
		defer out.Close()
	}

	if err := export.NewDayBook(st).Write(ctx, date, out); err != nil {
		logger.Fatal().Err(err).Msg("day book export failed")
	}
	logger.Info().Str("date", date.Format("2006-01-02")).Msg("day book written")

	if *mirror {
		if !cfg.Sheets.Enabled {
			logger.Fatal().Msg("sheets mirror requested but sheets.enabled is false")
		}
		if err := mirrorDay(ctx, cfg, st, date, logger); err != nil {
			logger.Fatal().Err(err).Msg("sheets mirror failed")
		}
	}
}

func mirrorDay(ctx context.Context, cfg *config.Config, st *store.Store, date time.Time, logger zerolog.Logger) error {
	svc, err := sheets.NewMirrorService(ctx, cfg.Sheets.CredentialsPath, cfg.Sheets.SpreadsheetID, logger)
	if err != nil {
		return err
	}

	resources, err := st.ListActiveResources(ctx)
	if err != nil {
		return err
	}
	appointments, err := st.ListAppointmentsByDate(ctx, date)
	if err != nil {
		return err
	}
	return svc.MirrorDay(ctx, date, resources, appointments)
}
