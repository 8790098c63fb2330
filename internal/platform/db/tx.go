package db

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/patient-journal/internal/platform/errs"
)

type contextKey string

const DBTxKey contextKey = "db_tx"

// Beginner starts transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Querier is the subset of pgx shared by pools, connections and transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// TxFromContext returns the transaction bound to ctx, or nil.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(DBTxKey).(pgx.Tx)
	return tx
}

// Conn returns the transaction bound to ctx if there is one, else fallback.
func Conn(ctx context.Context, fallback Querier) Querier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return fallback
}

// WithTx begins a transaction and returns a context carrying it.
func WithTx(ctx context.Context, b Beginner) (context.Context, pgx.Tx, error) {
	if b == nil {
		return ctx, nil, errors.New("no database connection in context")
	}
	tx, err := b.Begin(ctx)
	if err != nil {
		return ctx, nil, err
	}
	return context.WithValue(ctx, DBTxKey, tx), tx, nil
}

// Transactional runs the handler inside a single transaction. The transaction
// commits only if the handler returns nil with a status below 400; every
// other exit, panics included, rolls back. The response is held back until
// the commit succeeds so clients never see a success that was not persisted.
func Transactional(b Beginner, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			ctx := c.Request().Context()
			txCtx, tx, err := WithTx(ctx, b)
			if err != nil {
				return errs.Wrap(errs.Internal, "begin transaction", err)
			}

			req := c.Request()
			c.SetRequest(req.WithContext(txCtx))
			defer c.SetRequest(req)

			res := c.Response()
			orig := res.Writer
			buf := &bufferedWriter{header: orig.Header(), status: http.StatusOK}
			res.Writer = buf

			done := false
			defer func() {
				res.Writer = orig
				if done {
					return
				}
				if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
					logger.Warn().Err(rbErr).Msg("transaction rollback failed")
				}
				if r := recover(); r != nil {
					panic(r)
				}
				// Rolled back on purpose: pass the handler's own response through.
				if res.Committed {
					buf.flush(orig)
				}
			}()

			if err = next(c); err != nil {
				return err
			}
			if res.Status >= http.StatusBadRequest {
				return nil
			}

			if cerr := tx.Commit(ctx); cerr != nil {
				done = true
				res.Writer = orig
				res.Committed = false
				res.Status = http.StatusOK
				res.Size = 0
				return errs.Wrap(errs.Internal, "commit transaction", cerr)
			}

			done = true
			res.Writer = orig
			buf.flush(orig)
			return nil
		}
	}
}

// bufferedWriter holds a response in memory until the transaction outcome is known.
type bufferedWriter struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (w *bufferedWriter) Header() http.Header { return w.header }

func (w *bufferedWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.wroteHeader = true
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(p)
}

func (w *bufferedWriter) flush(dst http.ResponseWriter) {
	if !w.wroteHeader {
		return
	}
	dst.WriteHeader(w.status)
	if w.body.Len() > 0 {
		_, _ = dst.Write(w.body.Bytes())
	}
}
