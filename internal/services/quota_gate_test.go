package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ronicTakouugang/stockz/internal/models"
)

func newTestGate(store QuotaStore, at time.Time) *QuotaGate {
	gate := NewQuotaGate(store, 0, quietLogger())
	gate.now = func() time.Time { return at }
	return gate
}

func TestQuotaGate_DefaultLimit(t *testing.T) {
	gate := NewQuotaGate(&MockQuotaStore{}, -1, quietLogger())
	assert.Equal(t, DefaultDailyQuota, gate.Limit())
	assert.Equal(t, 3, NewQuotaGate(&MockQuotaStore{}, 3, quietLogger()).Limit())
}

func TestQuotaGate_CheckUnderLimit(t *testing.T) {
	store := &MockQuotaStore{}
	at := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)
	store.On("GetCount", mock.Anything, "user-1", "2024-03-09").Return(4, nil)

	ticket, err := newTestGate(store, at).Check(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, QuotaTicket{UserID: "user-1", DateKey: "2024-03-09"}, ticket)
	store.AssertExpectations(t)
}

func TestQuotaGate_CheckAtLimit(t *testing.T) {
	store := &MockQuotaStore{}
	at := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	store.On("GetCount", mock.Anything, "user-1", "2024-03-09").Return(5, nil)

	_, err := newTestGate(store, at).Check(context.Background(), "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrQuotaExceeded)
	assert.Contains(t, err.Error(), "(5/5)")
	store.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything, mock.Anything)
}

func TestQuotaGate_CheckStoreError(t *testing.T) {
	store := &MockQuotaStore{}
	store.On("GetCount", mock.Anything, "user-1", mock.Anything).Return(0, errors.New("connection refused"))

	_, err := newTestGate(store, time.Now()).Check(context.Background(), "user-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrQuotaExceeded)
}

func TestQuotaGate_CommitUsesTicketDate(t *testing.T) {
	store := &MockQuotaStore{}
	store.On("Increment", mock.Anything, "user-1", "2024-03-09").Return(nil)

	// The clock has moved past midnight; the ticket still charges the day it was issued.
	gate := newTestGate(store, time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC))
	err := gate.Commit(context.Background(), QuotaTicket{UserID: "user-1", DateKey: "2024-03-09"})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestQuotaGate_CommitError(t *testing.T) {
	store := &MockQuotaStore{}
	store.On("Increment", mock.Anything, "user-1", "2024-03-09").Return(errors.New("timeout"))

	err := newTestGate(store, time.Now()).Commit(context.Background(), QuotaTicket{UserID: "user-1", DateKey: "2024-03-09"})
	assert.Error(t, err)
}

func TestQuotaGate_Status(t *testing.T) {
	tests := []struct {
		name      string
		used      int
		remaining int
	}{
		{"fresh", 0, 5},
		{"partial", 3, 2},
		{"exhausted", 5, 0},
		{"over", 7, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockQuotaStore{}
			store.On("GetCount", mock.Anything, "user-1", "2024-03-09").Return(tt.used, nil)

			status, err := newTestGate(store, time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)).Status(context.Background(), "user-1")
			require.NoError(t, err)
			assert.Equal(t, tt.used, status.Used)
			assert.Equal(t, 5, status.Limit)
			assert.Equal(t, tt.remaining, status.Remaining)
			assert.Equal(t, "2024-03-09", status.DateKey)
		})
	}
}
