package config

import (
	"errors"
	"os"
	"strings"

	"jobdash/cli/internal/dsn"
	jderrors "jobdash/cli/internal/errors"
	"jobdash/cli/internal/keychain"
)

// Source names where the connection parameters were found.
type Source string

const (
	SourceFlag        Source = "--dsn flag"
	SourceConfigDSN   Source = "dsn setting (JOBDASH_DSN or config file)"
	SourceDatabaseURL Source = "DATABASE_URL environment variable"
	SourceDiscrete    Source = "db settings (JOBDASH_DB_* or config file)"
	SourceKeychain    Source = "OS keychain"
)

// Resolver finds connection parameters. Zero-value fields fall back to the real
// environment and keychain.
type Resolver struct {
	Getenv    func(string) string
	LoadSaved func() (string, error)
	FlagDSN   string
	Config    *Config
}

// ResolveConnection picks the first configured source in this order: --dsn flag,
// dsn setting, DATABASE_URL, discrete db settings, keychain. Any failure here is a
// configuration error and fatal to the command.
func (r Resolver) ResolveConnection() (dsn.Params, Source, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := r.Config
	if cfg == nil {
		cfg = defaultConfig()
	}

	if v := strings.TrimSpace(r.FlagDSN); v != "" {
		return fromDSN(v, SourceFlag)
	}
	if v := strings.TrimSpace(cfg.DSN); v != "" {
		return fromDSN(v, SourceConfigDSN)
	}
	if v := strings.TrimSpace(getenv("DATABASE_URL")); v != "" {
		return fromDSN(v, SourceDatabaseURL)
	}
	if !cfg.DB.IsZero() {
		p := dsn.Params{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			Database: cfg.DB.Name,
			SSLMode:  cfg.DB.SSLMode,
		}
		if p.Port == "" {
			p.Port = dsn.DefaultPort
		}
		if err := p.Validate(); err != nil {
			return dsn.Params{}, SourceDiscrete, jderrors.Wrap(jderrors.Configuration, "incomplete db settings", err)
		}
		return p, SourceDiscrete, nil
	}

	load := r.LoadSaved
	if load == nil {
		load = loadFromKeychain
	}
	saved, err := load()
	if err == nil && strings.TrimSpace(saved) != "" {
		return fromDSN(saved, SourceKeychain)
	}
	if err != nil && !errors.Is(err, keychain.ErrNotFound) {
		return dsn.Params{}, SourceKeychain, jderrors.Wrap(jderrors.Configuration,
			"no database connection configured and the keychain could not be read", err)
	}

	return dsn.Params{}, "", jderrors.New(jderrors.Configuration,
		"no database connection configured; run 'jobdash connect' or set JOBDASH_DSN")
}

func fromDSN(raw string, src Source) (dsn.Params, Source, error) {
	p, err := dsn.Parse(raw)
	if err != nil {
		return dsn.Params{}, src, jderrors.Wrap(jderrors.Configuration, "invalid connection string from "+string(src), err)
	}
	if err := p.Validate(); err != nil {
		return dsn.Params{}, src, jderrors.Wrap(jderrors.Configuration, "incomplete connection string from "+string(src), err)
	}
	return p, src, nil
}

func loadFromKeychain() (string, error) {
	km, err := keychain.GetManager()
	if err != nil {
		return "", err
	}
	return km.LoadDBDSN()
}
