package advisor

import (
	"context"
	"strings"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// Suggestion is a non-binding diagnosis hint surfaced to technicians. It never
// feeds back into workflow decisions.
type Suggestion struct {
	Diagnosis string
	Severity  domain.TicketPriority
}

// Advisor produces diagnosis suggestions from a fault description.
type Advisor interface {
	Suggest(ctx context.Context, description string, asset *domain.Asset) (*Suggestion, error)
}

// Noop is the disabled advisor. It returns no suggestion.
type Noop struct{}

func (Noop) Suggest(ctx context.Context, description string, asset *domain.Asset) (*Suggestion, error) {
	return nil, nil
}

// Keyword is a small rule-based advisor matching fault keywords to canned
// diagnoses. It stands in until an external analysis backend is wired up.
type Keyword struct{}

type keywordRule struct {
	terms     []string
	diagnosis string
	severity  domain.TicketPriority
}

var keywordRules = []keywordRule{
	{[]string{"leak", "drip", "water"}, "Possible seal or hose failure; inspect gaskets and couplings.", domain.TicketPriorityHigh},
	{[]string{"smoke", "burn", "fire"}, "Electrical or thermal fault; power the unit down before inspection.", domain.TicketPriorityCritical},
	{[]string{"noise", "rattle", "vibrat"}, "Loose mounting or worn bearing; check fasteners and rotating parts.", domain.TicketPriorityMedium},
	{[]string{"not start", "no power", "dead"}, "Power delivery fault; verify supply, fuses, and control board.", domain.TicketPriorityHigh},
}

func (Keyword) Suggest(ctx context.Context, description string, asset *domain.Asset) (*Suggestion, error) {
	lowered := strings.ToLower(description)
	for _, rule := range keywordRules {
		for _, term := range rule.terms {
			if strings.Contains(lowered, term) {
				return &Suggestion{Diagnosis: rule.diagnosis, Severity: rule.severity}, nil
			}
		}
	}
	return nil, nil
}
