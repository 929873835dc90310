package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockPoolAdapter wraps pgxmock.PgxPoolIface to implement DatabasePool interface
type MockPoolAdapter struct {
	mock pgxmock.PgxPoolIface
}

func NewMockPoolAdapter(mock pgxmock.PgxPoolIface) DatabasePool {
	return &MockPoolAdapter{mock: mock}
}

func (m *MockPoolAdapter) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return m.mock.QueryRow(ctx, sql, args...)
}

func (m *MockPoolAdapter) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return m.mock.Exec(ctx, sql, args...)
}

func (m *MockPoolAdapter) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return m.mock.Query(ctx, sql, args...)
}

func newMockRepo(t *testing.T) (*QuotaRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewQuotaRepository(NewMockPoolAdapter(mock)), mock
}

func TestQuotaRepository_GetCount(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT count FROM ai_usage").
		WithArgs("user-1", "2024-03-15").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.GetCount(context.Background(), "user-1", "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaRepository_GetCount_NoRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT count FROM ai_usage").
		WithArgs("user-2", "2024-03-15").
		WillReturnError(pgx.ErrNoRows)

	count, err := repo.GetCount(context.Background(), "user-2", "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaRepository_GetCount_Error(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT count FROM ai_usage").
		WithArgs("user-3", "2024-03-15").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetCount(context.Background(), "user-3", "2024-03-15")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read quota")
}

func TestQuotaRepository_Increment(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO ai_usage").
		WithArgs("user-1", "2024-03-15").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Increment(context.Background(), "user-1", "2024-03-15"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaRepository_Increment_Error(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO ai_usage").
		WithArgs("user-1", "2024-03-15").
		WillReturnError(errors.New("deadlock detected"))

	err := repo.Increment(context.Background(), "user-1", "2024-03-15")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock detected")
}

func TestQuotaRepository_EnsureSchema(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ai_usage").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
