package sla

import (
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// IsOverdue derives whether a ticket has exceeded its priority's SLA window.
// Terminal-side states (RESOLVED, CLOSED) are never overdue. The flag is
// recomputed on every read so it always reflects current configuration.
func IsOverdue(ticket *domain.Ticket, cfg domain.SystemConfig, now time.Time) bool {
	if ticket.Status == domain.TicketStatusResolved || ticket.Status == domain.TicketStatusClosed {
		return false
	}
	return now.Sub(ticket.CreatedAt) > Threshold(ticket.Priority, cfg)
}

// Threshold returns the maximum age for a ticket of the given priority.
// HIGH and CRITICAL share the high-priority window.
func Threshold(priority domain.TicketPriority, cfg domain.SystemConfig) time.Duration {
	hours := cfg.SLALowPriorityHours
	switch priority {
	case domain.TicketPriorityHigh, domain.TicketPriorityCritical:
		hours = cfg.SLAHighPriorityHours
	case domain.TicketPriorityMedium:
		hours = cfg.SLAMediumPriorityHours
	}
	return time.Duration(hours) * time.Hour
}
