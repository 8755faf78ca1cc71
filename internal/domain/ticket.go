package domain

import "time"

// TicketStatus enumerates lifecycle states for maintenance jobs.
type TicketStatus string

const (
	TicketStatusOpen         TicketStatus = "OPEN"
	TicketStatusInProgress   TicketStatus = "IN_PROGRESS"
	TicketStatusPendingParts TicketStatus = "PENDING_PARTS"
	TicketStatusResolved     TicketStatus = "RESOLVED"
	TicketStatusClosed       TicketStatus = "CLOSED"
)

// Terminal reports whether no further transition is possible from the status.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusClosed
}

// Valid reports whether the status is a known lifecycle state.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusPendingParts, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Valid reports whether the priority is a known level.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// Coordinates is a (lat, lng) pair in degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Ticket is the aggregate for equipment fault reports. Tickets are never
// physically deleted; closure is recorded via status and ClosedAt.
type Ticket struct {
	ID           string
	ExternalKey  string
	Title        string
	Description  string
	AssetID      string
	TechnicianID *string
	Status       TicketStatus
	Priority     TicketPriority
	FaultType    string
	Location     Coordinates
	FormData     map[string]any
	Diagnosis    *string
	ImageURL     *string
	Rating       *int
	Feedback     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ClosedAt     *time.Time
}

// Clone returns a deep enough copy for prepare/commit transitions: the
// returned ticket can be mutated without touching the original's form data.
func (t *Ticket) Clone() *Ticket {
	clone := *t
	if t.FormData != nil {
		clone.FormData = make(map[string]any, len(t.FormData))
		for k, v := range t.FormData {
			clone.FormData[k] = v
		}
	}
	return &clone
}
