// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"os"
	"time"

	"jobdash/cli/internal/catalog"
	"jobdash/cli/internal/config"
	"jobdash/cli/internal/database"
	"jobdash/cli/internal/dsn"
	jderrors "jobdash/cli/internal/errors"
	"jobdash/cli/internal/render"
	"jobdash/cli/internal/sqlexec"
)

// session bundles everything a command needs to talk to the database.
// One process has at most one session.
type session struct {
	params  dsn.Params
	source  config.Source
	db      *database.Manager
	exec    *sqlexec.Executor
	reports *catalog.Catalog
	out     *render.Renderer
}

var active *session

// openSession resolves connection settings and prepares the executor. It does not dial:
// the first query does. A missing or invalid setting is returned as a configuration error.
func openSession() (*session, error) {
	if active != nil {
		return active, nil
	}

	params, source, err := config.Resolver{FlagDSN: dsnFlag, Config: cfg}.ResolveConnection()
	if err != nil {
		return nil, err
	}
	reports, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("source", string(source)).
		Str("dsn", params.Redacted()).
		Int("reports", reports.Len()).
		Msg("connection settings resolved")

	db := database.NewManager(params.URL(),
		database.WithDialer(database.PgxDialer(cfg.ConnectTimeout)),
		database.WithLogger(logger),
	)
	active = &session{
		params:  params,
		source:  source,
		db:      db,
		exec:    sqlexec.New(db, sqlexec.WithLogger(logger)),
		reports: reports,
		out:     render.New(os.Stdout, render.WithTiming(verbose)),
	}
	return active, nil
}

func closeSession() {
	if active == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := active.db.Close(ctx); err != nil {
		logger.Debug().Err(err).Msg("closing database session")
	}
	active = nil
}

// loadCatalog appends the reports from the config file to the built-in catalog.
func loadCatalog(c *config.Config) (*catalog.Catalog, error) {
	extra := make([]catalog.Entry, 0, len(c.Reports))
	for _, r := range c.Reports {
		chart, err := catalog.ParseChart(r.Chart)
		if err != nil {
			return nil, jderrors.Wrap(jderrors.Configuration, "report "+r.ID, err)
		}
		extra = append(extra, catalog.Entry{
			ID:    r.ID,
			Label: r.Label,
			SQL:   r.SQL,
			Chart: chart,
		})
	}
	reports, err := catalog.Default().With(extra...)
	if err != nil {
		return nil, jderrors.Wrap(jderrors.Configuration, "invalid report in config", err)
	}
	return reports, nil
}
