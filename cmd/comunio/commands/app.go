package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"comunio-manager/internal/components/chrono"
	"comunio-manager/internal/components/telemetry"
	"comunio-manager/internal/config"
	"comunio-manager/internal/db"
	"comunio-manager/internal/historian"
	"comunio-manager/internal/scrapers/comunio"
	"comunio-manager/internal/statistics"
	"comunio-manager/internal/synchronizer"
)

const report_refresh = "cli.refresh"

// app holds what every subcommand shares, it is built from the config once
// per invocation.
type app struct {
	cfg      config.Config
	database *sql.DB
	otel     telemetry.Telemetry
	tel      telemetry.API
	time     chrono.TimeAPI
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	otel, err := telemetry.Setup(ctx, "comunio", cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("setup telemetry: %w", err)
	}

	database, err := db.OpenDB(ctx, cfg.Database)
	if err != nil {
		return nil, errors.Join(err, otel.Shutdown(ctx))
	}

	return &app{
		cfg:      cfg,
		database: database,
		otel:     otel,
		tel:      telemetry.SlogAPI{},
		time:     chrono.NewStandardTime(),
	}, nil
}

func (a *app) Close(ctx context.Context) error {
	return errors.Join(a.database.Close(), a.otel.Shutdown(ctx))
}

func (a *app) historian() historian.Historian {
	return historian.NewHistorian(db.New(a.database), a.time, a.tel)
}

func (a *app) calculator() statistics.Calculator {
	return statistics.NewCalculator(a.historian(), a.time)
}

// refresh logs in and records today, an unreachable site is not an error.
func (a *app) refresh(ctx context.Context) (synchronizer.Result, error) {
	if a.cfg.Username == "" {
		return synchronizer.Result{}, fmt.Errorf(
			"no username configured, set it in %s, with --username or %s",
			configPath, config.EnvUsername,
		)
	}

	opts := a.cfg.Credentials()
	opts.DumpDir = dumpHttp
	session := comunio.Connect(ctx, opts, a.time, a.tel)
	if !session.Connected() {
		a.tel.ReportWarning(report_refresh, fmt.Errorf("working offline: %w", session.Err()))
	}

	sync := synchronizer.NewSynchronizer(db.NewMakeTx(a.database), session, a.time, a.tel)
	return sync.Run(ctx)
}
