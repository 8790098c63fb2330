package db

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehr/patient-journal/internal/platform/errs"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) Commit(context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	if f.committed {
		return pgx.ErrTxClosed
	}
	f.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func runTransactional(t *testing.T, b Beginner, h echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	err := Transactional(b, zerolog.Nop())(h)(c)
	return rec, err
}

func TestTxFromContext_Nil(t *testing.T) {
	assert.Nil(t, TxFromContext(context.Background()))
}

func TestTxFromContext_WithWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), DBTxKey, "not-a-tx")
	assert.Nil(t, TxFromContext(ctx))
}

func TestWithTx_NoConnection(t *testing.T) {
	_, _, err := WithTx(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, "no database connection in context", err.Error())
}

func TestWithTx_BindsTransaction(t *testing.T) {
	tx := &fakeTx{}
	ctx, got, err := WithTx(context.Background(), &fakeBeginner{tx: tx})
	require.NoError(t, err)
	assert.Same(t, tx, got)
	assert.Same(t, tx, TxFromContext(ctx))
}

func TestTransactional_CommitsOnSuccess(t *testing.T) {
	tx := &fakeTx{}
	var sawTx pgx.Tx
	rec, err := runTransactional(t, &fakeBeginner{tx: tx}, func(c echo.Context) error {
		sawTx = TxFromContext(c.Request().Context())
		return c.JSON(http.StatusCreated, map[string]string{"id": "1"})
	})

	require.NoError(t, err)
	assert.Same(t, tx, sawTx)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":"1"}`, rec.Body.String())
}

func TestTransactional_RollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	_, err := runTransactional(t, &fakeBeginner{tx: tx}, func(c echo.Context) error {
		return errs.NotFoundf("Patient not found")
	})

	require.Error(t, err)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestTransactional_RollsBackOnErrorStatus(t *testing.T) {
	tx := &fakeTx{}
	rec, err := runTransactional(t, &fakeBeginner{tx: tx}, func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Location not found"})
	})

	require.NoError(t, err)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Location not found"}`, rec.Body.String())
}

func TestTransactional_RollsBackOnPanic(t *testing.T) {
	tx := &fakeTx{}
	assert.Panics(t, func() {
		_, _ = runTransactional(t, &fakeBeginner{tx: tx}, func(c echo.Context) error {
			panic("boom")
		})
	})
	assert.True(t, tx.rolledBack)
}

func TestTransactional_CommitFailureHidesResponse(t *testing.T) {
	tx := &fakeTx{commitErr: errors.New("serialization failure")}
	rec, err := runTransactional(t, &fakeBeginner{tx: tx}, func(c echo.Context) error {
		return c.JSON(http.StatusCreated, map[string]string{"id": "1"})
	})

	require.Error(t, err)
	assert.Equal(t, errs.Internal, errs.KindOf(err))
	assert.Empty(t, rec.Body.String())
}

func TestTransactional_BeginFailure(t *testing.T) {
	called := false
	_, err := runTransactional(t, &fakeBeginner{err: errors.New("pool closed")}, func(c echo.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}
