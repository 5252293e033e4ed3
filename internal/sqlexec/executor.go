// Package sqlexec runs report and ad-hoc SQL against the session held by the connection
// manager and materializes the result set in memory.
//
// Every call produces an Outcome with exactly one of three shapes:
//   - Success: column names plus all rows, in the order the database returned them
//   - Rejected: free-form text failed the read-only check; nothing was sent to the database
//   - Failure: the driver reported an error, or no connection could be obtained
//
// SQL text is sent verbatim. There is no parameter binding and no rewriting, so the catalog
// entries and the user's input reach PostgreSQL exactly as written.
package sqlexec

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"jobdash/cli/internal/database"
	jderrors "jobdash/cli/internal/errors"
	"jobdash/cli/internal/logging"
)

// Source tells the executor where a statement came from.
type Source int

const (
	// SourceCatalog statements are trusted and skip the read-only check.
	SourceCatalog Source = iota
	// SourceUser statements were typed by the user and must pass ValidateReadOnly.
	SourceUser
)

func (s Source) String() string {
	if s == SourceCatalog {
		return "catalog"
	}
	return "user"
}

// ConnectionProvider hands out the live session. *database.Manager implements it.
type ConnectionProvider interface {
	Get(ctx context.Context) (database.Conn, error)
}

// Executor executes statements on connections obtained from a ConnectionProvider.
type Executor struct {
	conns ConnectionProvider
	log   zerolog.Logger
	now   func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger for per-query debug lines.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// New creates an Executor. It does not touch the database.
func New(conns ConnectionProvider, opts ...Option) *Executor {
	e := &Executor{
		conns: conns,
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes sqlText and returns its Outcome. User statements that fail the read-only
// check are rejected before a connection is requested.
func (e *Executor) Run(ctx context.Context, sqlText string, source Source) Outcome {
	if source == SourceUser {
		if err := ValidateReadOnly(sqlText); err != nil {
			e.log.Debug().
				Str("sql", logging.MaskSQL(sqlText, 120)).
				Msg("rejected non-SELECT input")
			return Rejected{Reason: err.Error()}
		}
	}
	return e.execute(ctx, sqlText, source)
}

func (e *Executor) execute(ctx context.Context, sqlText string, source Source, args ...any) Outcome {
	id := uuid.NewString()[:8]
	log := e.log.With().
		Str("query_id", id).
		Str("source", source.String()).
		Logger()

	conn, err := e.conns.Get(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("no connection for query")
		return Failure{Kind: jderrors.Connection, Err: err}
	}

	start := e.now()
	log.Debug().Str("sql", logging.MaskSQL(sqlText, 120)).Msg("executing")

	res, err := collect(ctx, conn, sqlText, args...)
	elapsed := e.now().Sub(start)
	if err != nil {
		kind := jderrors.Database
		if logging.ClassifyDBError(err) == logging.DBErrorConnection {
			kind = jderrors.Connection
		}
		log.Debug().
			Err(err).
			Dur("elapsed", elapsed).
			Str("category", logging.ClassifyDBError(err).String()).
			Msg("query failed")
		return Failure{Kind: kind, Err: err}
	}

	log.Debug().
		Dur("elapsed", elapsed).
		Int("rows", len(res.Rows)).
		Int("columns", len(res.Columns)).
		Msg("query finished")
	return Success{Result: res, Elapsed: elapsed}
}

// collect drains the rows of one statement into a Result.
// Errors surface either from Query or, for most server-side failures, from rows.Err.
func collect(ctx context.Context, conn database.Conn, sqlText string, args ...any) (Result, error) {
	rows, err := conn.Query(ctx, sqlText, args...)
	if err != nil {
		return Result{}, err
	}
	defer rows.Close()

	res := Result{
		Columns: []string{},
		Rows:    [][]any{},
	}
	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}
	res.Columns = cols

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return Result{}, err
		}
		for i, fd := range fds {
			if fd.DataTypeOID != pgtype.DateOID || i >= len(vals) {
				continue
			}
			if t, ok := vals[i].(time.Time); ok {
				vals[i] = Date{Time: t}
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}
	return res, nil
}
