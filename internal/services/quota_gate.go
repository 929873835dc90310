package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ronicTakouugang/stockz/internal/models"
)

// DefaultDailyQuota is the number of analyses a user may run per UTC day.
const DefaultDailyQuota = 5

// QuotaStore persists per-user, per-day usage counters. Increment must be
// atomic in the backing store.
type QuotaStore interface {
	GetCount(ctx context.Context, userID, dateKey string) (int, error)
	Increment(ctx context.Context, userID, dateKey string) error
}

// QuotaTicket is issued by Check and redeemed by Commit. It pins the date
// key so a request spanning midnight is charged to the day it started.
type QuotaTicket struct {
	UserID  string
	DateKey string
}

// QuotaGate enforces the daily analysis limit.
type QuotaGate struct {
	store  QuotaStore
	limit  int
	now    func() time.Time
	logger *logrus.Logger
}

// NewQuotaGate creates a gate over store. A non-positive limit uses DefaultDailyQuota.
func NewQuotaGate(store QuotaStore, limit int, logger *logrus.Logger) *QuotaGate {
	if limit <= 0 {
		limit = DefaultDailyQuota
	}
	return &QuotaGate{store: store, limit: limit, now: time.Now, logger: logger}
}

func (g *QuotaGate) Limit() int { return g.limit }

func (g *QuotaGate) dateKey() string {
	return g.now().UTC().Format(models.DateLayout)
}

// Check fails with models.ErrQuotaExceeded once the user has used the
// whole daily allowance.
func (g *QuotaGate) Check(ctx context.Context, userID string) (QuotaTicket, error) {
	ticket := QuotaTicket{UserID: userID, DateKey: g.dateKey()}
	count, err := g.store.GetCount(ctx, userID, ticket.DateKey)
	if err != nil {
		return QuotaTicket{}, fmt.Errorf("failed to read quota: %w", err)
	}
	if count >= g.limit {
		g.logger.WithFields(logrus.Fields{
			"user_id":  userID,
			"date_key": ticket.DateKey,
			"count":    count,
			"limit":    g.limit,
		}).Info("Daily analysis quota exhausted")
		return QuotaTicket{}, fmt.Errorf("%w (%d/%d)", models.ErrQuotaExceeded, count, g.limit)
	}
	return ticket, nil
}

// Commit records one successful analysis against the ticket's day.
func (g *QuotaGate) Commit(ctx context.Context, ticket QuotaTicket) error {
	if err := g.store.Increment(ctx, ticket.UserID, ticket.DateKey); err != nil {
		return fmt.Errorf("failed to increment quota: %w", err)
	}
	return nil
}

// Status reports today's usage for userID.
func (g *QuotaGate) Status(ctx context.Context, userID string) (*models.QuotaStatus, error) {
	key := g.dateKey()
	used, err := g.store.GetCount(ctx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read quota: %w", err)
	}
	remaining := g.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return &models.QuotaStatus{
		UserID:    userID,
		DateKey:   key,
		Used:      used,
		Limit:     g.limit,
		Remaining: remaining,
	}, nil
}
