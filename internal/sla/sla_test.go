package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

func testConfig() domain.SystemConfig {
	cfg := domain.DefaultSystemConfig()
	cfg.SLAHighPriorityHours = 4
	cfg.SLAMediumPriorityHours = 24
	cfg.SLALowPriorityHours = 72
	return cfg
}

func ticketAged(priority domain.TicketPriority, status domain.TicketStatus, age time.Duration, now time.Time) *domain.Ticket {
	return &domain.Ticket{
		Status:    status,
		Priority:  priority,
		CreatedAt: now.Add(-age),
	}
}

func TestIsOverdue_HighPriorityPastThreshold(t *testing.T) {
	now := time.Now()
	ticket := ticketAged(domain.TicketPriorityHigh, domain.TicketStatusInProgress, 6*time.Hour, now)
	assert.True(t, IsOverdue(ticket, testConfig(), now))
}

func TestIsOverdue_ResolvedNeverOverdue(t *testing.T) {
	now := time.Now()
	ticket := ticketAged(domain.TicketPriorityHigh, domain.TicketStatusResolved, 100*time.Hour, now)
	assert.False(t, IsOverdue(ticket, testConfig(), now))
}

func TestIsOverdue_ClosedNeverOverdue(t *testing.T) {
	now := time.Now()
	ticket := ticketAged(domain.TicketPriorityCritical, domain.TicketStatusClosed, 100*time.Hour, now)
	assert.False(t, IsOverdue(ticket, testConfig(), now))
}

func TestIsOverdue_CriticalSharesHighThreshold(t *testing.T) {
	now := time.Now()
	cfg := testConfig()
	high := ticketAged(domain.TicketPriorityHigh, domain.TicketStatusOpen, 5*time.Hour, now)
	critical := ticketAged(domain.TicketPriorityCritical, domain.TicketStatusOpen, 5*time.Hour, now)
	assert.True(t, IsOverdue(high, cfg, now))
	assert.True(t, IsOverdue(critical, cfg, now))
}

func TestIsOverdue_WithinWindow(t *testing.T) {
	now := time.Now()
	cfg := testConfig()
	assert.False(t, IsOverdue(ticketAged(domain.TicketPriorityMedium, domain.TicketStatusOpen, 23*time.Hour, now), cfg, now))
	assert.False(t, IsOverdue(ticketAged(domain.TicketPriorityLow, domain.TicketStatusOpen, 71*time.Hour, now), cfg, now))
}

func TestIsOverdue_TracksConfigChanges(t *testing.T) {
	now := time.Now()
	ticket := ticketAged(domain.TicketPriorityMedium, domain.TicketStatusOpen, 10*time.Hour, now)
	cfg := testConfig()
	assert.False(t, IsOverdue(ticket, cfg, now))

	cfg.SLAMediumPriorityHours = 8
	assert.True(t, IsOverdue(ticket, cfg, now))
}
