// Package database owns the one PostgreSQL session jobdash talks to.
//
// The Manager creates the session lazily, caches it, validates it before every use and
// replaces it at most once per Get when it turns out to be broken. There is no pool and
// no backoff: a database that is still unreachable after one fresh attempt is reported
// to the caller as a connection error, and the next Get starts over.
//
// One jobdash process is one user session and issues one query at a time, so the cached
// handle is never shared by concurrent queries. The Manager's own bookkeeping is still
// guarded by a mutex so Get and Close may be called from different goroutines (for
// example a signal handler closing the session).
package database

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	jderrors "jobdash/cli/internal/errors"
	"jobdash/cli/internal/logging"
)

// Conn is the subset of *pgx.Conn the rest of jobdash uses.
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	IsClosed() bool
	Close(ctx context.Context) error
}

var _ Conn = (*pgx.Conn)(nil)

// Dialer opens a new session.
type Dialer func(ctx context.Context, connString string) (Conn, error)

// PgxDialer returns a Dialer backed by pgx.ConnectConfig. connectTimeout bounds only the
// connection handshake; zero keeps the driver default.
func PgxDialer(connectTimeout time.Duration) Dialer {
	return func(ctx context.Context, connString string) (Conn, error) {
		cfg, err := pgx.ParseConfig(connString)
		if err != nil {
			return nil, err
		}
		if connectTimeout > 0 {
			cfg.ConnectTimeout = connectTimeout
		}
		if _, ok := cfg.RuntimeParams["application_name"]; !ok {
			cfg.RuntimeParams["application_name"] = "jobdash"
		}
		return pgx.ConnectConfig(ctx, cfg)
	}
}

// Stats counts session churn, for dbinfo and tests.
type Stats struct {
	// Dials is the number of sessions opened (successful or not).
	Dials int
	// Replaced is the number of cached sessions discarded after failing validation.
	Replaced int
}

// Manager provides a working connection on demand.
type Manager struct {
	mu         sync.Mutex
	connString string
	dial       Dialer
	log        zerolog.Logger
	conn       Conn
	stats      Stats
}

// Option configures a Manager.
type Option func(*Manager)

// WithDialer replaces the pgx dialer.
func WithDialer(d Dialer) Option {
	return func(m *Manager) { m.dial = d }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a Manager for connString. Nothing is dialed until the first Get.
func NewManager(connString string, opts ...Option) *Manager {
	m := &Manager{
		connString: connString,
		dial:       PgxDialer(0),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With().Str("component", "database").Logger()
	return m
}

// Get returns the cached session if it still answers a ping. Otherwise, or if there is no
// session yet and the first dial fails, it makes exactly one fresh dial and returns that
// session or a connection error.
func (m *Manager) Get(ctx context.Context) (Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, jderrors.Wrap(jderrors.Connection, "connection request canceled", err)
	}

	if m.conn != nil {
		err := m.validate(ctx)
		if err == nil {
			return m.conn, nil
		}
		m.log.Warn().Err(err).Msg("cached connection failed validation; reconnecting once")
		m.discard(ctx)
		m.stats.Replaced++
		return m.retry(ctx)
	}

	conn, err := m.dialOnce(ctx)
	if err == nil {
		m.conn = conn
		return conn, nil
	}
	m.log.Warn().Str("error", logging.Mask(err.Error())).Msg("connect failed; retrying once")
	return m.retry(ctx)
}

// Close ends the cached session, if any. It is safe to call more than once.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return nil
	}
	err := m.conn.Close(ctx)
	m.conn = nil
	m.log.Debug().Msg("connection closed")
	return err
}

// Stats returns a snapshot of the counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

func (m *Manager) validate(ctx context.Context) error {
	if m.conn.IsClosed() {
		return errConnClosed
	}
	return m.conn.Ping(ctx)
}

func (m *Manager) retry(ctx context.Context) (Conn, error) {
	conn, err := m.dialOnce(ctx)
	if err != nil {
		return nil, jderrors.Wrap(jderrors.Connection, "could not connect to database", maskedError{err})
	}
	m.conn = conn
	return conn, nil
}

func (m *Manager) dialOnce(ctx context.Context) (Conn, error) {
	m.stats.Dials++
	start := time.Now()
	conn, err := m.dial(ctx, m.connString)
	if err != nil {
		return nil, err
	}
	m.log.Debug().
		Str("dsn", logging.Mask(m.connString)).
		Dur("elapsed", time.Since(start)).
		Msg("connected")
	return conn, nil
}

// discard closes a broken session, ignoring the close error.
func (m *Manager) discard(ctx context.Context) {
	if m.conn == nil {
		return
	}
	_ = m.conn.Close(ctx)
	m.conn = nil
}

type sentinel string

func (s sentinel) Error() string { return string(s) }

const errConnClosed = sentinel("connection is closed")

// maskedError hides credentials that drivers sometimes echo back in dial errors while
// keeping the original error reachable for errors.As.
type maskedError struct{ err error }

func (e maskedError) Error() string { return logging.Mask(e.err.Error()) }
func (e maskedError) Unwrap() error { return e.err }
