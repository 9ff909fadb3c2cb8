package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	s := newPostgresStore(mock, 0, nil)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT payload FROM extraction_cache WHERE key = \$1`).
		WithArgs(key(1)).
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow([]byte(`{"rows":[]}`)))
	mock.ExpectExec(`UPDATE extraction_cache SET accessed_at = now\(\)`).
		WithArgs(key(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	got, ok, err := s.Get(ctx, key(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"rows":[]}`, string(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetMiss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	s := newPostgresStore(mock, 0, nil)

	mock.ExpectQuery(`SELECT payload FROM extraction_cache`).
		WithArgs(key(2)).
		WillReturnRows(pgxmock.NewRows([]string{"payload"}))

	_, ok, err := s.Get(context.Background(), key(2))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PutUpsertsAndEvicts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	s := newPostgresStore(mock, 500, nil)

	mock.ExpectExec(`INSERT INTO extraction_cache .* ON CONFLICT \(key\) DO UPDATE`).
		WithArgs(key(3), []byte(`{}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM extraction_cache WHERE key IN`).
		WithArgs(500).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	require.NoError(t, s.Put(context.Background(), key(3), []byte(`{}`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PutError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	s := newPostgresStore(mock, 0, nil)

	mock.ExpectExec(`INSERT INTO extraction_cache`).
		WithArgs(key(4), []byte(`{}`)).
		WillReturnError(errors.New("connection reset"))

	err = s.Put(context.Background(), key(4), []byte(`{}`))
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	s := newPostgresStore(mock, 0, nil)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS extraction_cache`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
