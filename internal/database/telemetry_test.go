package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedMock(t *testing.T) (*TracedPool, pgxmock.PgxPoolIface, *tracetest.SpanRecorder) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	traced := NewTracedPool(NewMockPoolAdapter(mock))
	traced.tracer = provider.Tracer("test")
	return traced, mock, recorder
}

func attr(attrs []attribute.KeyValue, key string) string {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value.Emit()
		}
	}
	return ""
}

func TestTracedPool_ExecSpan(t *testing.T) {
	traced, mock, recorder := newTracedMock(t)
	mock.ExpectExec("INSERT INTO ai_usage").
		WithArgs("u", "2024-03-15").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewQuotaRepository(traced)
	require.NoError(t, repo.Increment(context.Background(), "u", "2024-03-15"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "db.exec", spans[0].Name())
	assert.Equal(t, "INSERT", attr(spans[0].Attributes(), "db.operation"))
	assert.Equal(t, "1", attr(spans[0].Attributes(), "db.rows_affected"))
}

func TestTracedPool_QueryRowSpanEndsOnScan(t *testing.T) {
	traced, mock, recorder := newTracedMock(t)
	mock.ExpectQuery("SELECT count FROM ai_usage").
		WithArgs("u", "2024-03-15").
		WillReturnError(pgx.ErrNoRows)

	repo := NewQuotaRepository(traced)
	count, err := repo.GetCount(context.Background(), "u", "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "db.query_row", spans[0].Name())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestTracedPool_ErrorStatus(t *testing.T) {
	traced, mock, recorder := newTracedMock(t)
	mock.ExpectExec("INSERT INTO ai_usage").
		WithArgs("u", "2024-03-15").
		WillReturnError(errors.New("disk full"))

	err := NewQuotaRepository(traced).Increment(context.Background(), "u", "2024-03-15")
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "disk full", spans[0].Status().Description)
}

func TestStatementVerb(t *testing.T) {
	assert.Equal(t, "SELECT", statementVerb("  select 1"))
	assert.Equal(t, "", statementVerb("   "))
}
