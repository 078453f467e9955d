// services/workflow.go
package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"bidcraft-backend/models"
)

// WorkflowValidationResult reports whether a requested status transition may
// proceed. Errors block the transition; warnings are advisory only.
type WorkflowValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// WorkflowState is one reconstructed entry of a proposal's workflow history.
type WorkflowState struct {
	Status    models.ProposalStatus `json:"status"`
	Timestamp time.Time             `json:"timestamp"`
	Notes     string                `json:"notes"`
}

// TransitionRequirements describes what a transition needs, for display ahead
// of attempting it.
type TransitionRequirements struct {
	RequiresApproval bool     `json:"requiresApproval"`
	ValidationRules  []string `json:"validationRules"`
}

type transitionKey struct {
	from models.ProposalStatus
	to   models.ProposalStatus
}

type transitionRule struct {
	requiresApproval bool
	rules            []string
	validate         func(p *models.Proposal) (errors []string, warnings []string)
}

// proposalStates is the canonical forward chain. Order matters: progress is
// computed from the index.
var proposalStates = []models.ProposalStatus{
	models.StatusDraft,
	models.StatusReview,
	models.StatusReadyToSend,
	models.StatusSent,
}

var transitions = map[transitionKey]transitionRule{
	{models.StatusDraft, models.StatusReview}: {
		rules: []string{
			"Client name is required",
			"Client email is required",
			"Project name is required",
			"Project description is required",
		},
		validate: func(p *models.Proposal) ([]string, []string) {
			var errs []string
			if strings.TrimSpace(p.ClientName) == "" {
				errs = append(errs, "Client name is required")
			}
			if strings.TrimSpace(p.ClientEmail) == "" {
				errs = append(errs, "Client email is required")
			}
			if strings.TrimSpace(p.ProjectName) == "" {
				errs = append(errs, "Project name is required")
			}
			if strings.TrimSpace(p.ProjectDescription) == "" {
				errs = append(errs, "Project description is required")
			}
			return errs, nil
		},
	},
	{models.StatusReview, models.StatusReadyToSend}: {
		requiresApproval: true,
		rules: []string{
			"Proposal must be reviewed",
			"Total amount must be greater than 0",
			"Client phone and address should be on file",
		},
		validate: func(p *models.Proposal) ([]string, []string) {
			var errs, warns []string
			if p.ReviewedAt == nil {
				errs = append(errs, "Proposal must be reviewed before sending")
			}
			if strings.TrimSpace(p.ClientPhone) == "" {
				warns = append(warns, "Client phone number is missing")
			}
			if strings.TrimSpace(p.ClientAddress) == "" {
				warns = append(warns, "Client address is missing")
			}
			if p.TotalAmount <= 0 {
				errs = append(errs, "Total amount must be greater than 0")
			}
			return errs, warns
		},
	},
	{models.StatusReadyToSend, models.StatusSent}: {
		rules: []string{
			"Client email is required for sending",
		},
		validate: func(p *models.Proposal) ([]string, []string) {
			var errs []string
			if strings.TrimSpace(p.ClientEmail) == "" {
				errs = append(errs, "Client email is required for sending")
			}
			return errs, nil
		},
	},
}

// ValidTransitions returns the statuses reachable from the given status.
// The chain is linear, so the result has at most one element; it is empty for
// the terminal status and for unknown statuses.
func ValidTransitions(current models.ProposalStatus) []models.ProposalStatus {
	next := []models.ProposalStatus{}
	for key := range transitions {
		if key.from == current {
			next = append(next, key.to)
		}
	}
	return next
}

// CanTransition reports whether a rule exists for the exact (from, to) pair.
// It does not look at proposal content.
func CanTransition(from, to models.ProposalStatus) bool {
	_, ok := transitions[transitionKey{from, to}]
	return ok
}

// ValidateTransition checks a requested transition against the rule for the
// (from, to) pair. An undefined pair yields a single invalid-transition error.
// Pure: the proposal is never mutated.
func ValidateTransition(from, to models.ProposalStatus, p *models.Proposal) WorkflowValidationResult {
	rule, ok := transitions[transitionKey{from, to}]
	if !ok {
		return WorkflowValidationResult{
			IsValid:  false,
			Errors:   []string{fmt.Sprintf("Invalid transition from %s to %s", from, to)},
			Warnings: []string{},
		}
	}

	errs, warns := rule.validate(p)
	if errs == nil {
		errs = []string{}
	}
	if warns == nil {
		warns = []string{}
	}
	return WorkflowValidationResult{
		IsValid:  len(errs) == 0,
		Errors:   errs,
		Warnings: warns,
	}
}

// GetTransitionRequirements returns the approval flag and human-readable rule
// list for a transition, or an empty requirement set if the pair is undefined.
func GetTransitionRequirements(from, to models.ProposalStatus) TransitionRequirements {
	rule, ok := transitions[transitionKey{from, to}]
	if !ok {
		return TransitionRequirements{RequiresApproval: false, ValidationRules: []string{}}
	}
	return TransitionRequirements{
		RequiresApproval: rule.requiresApproval,
		ValidationRules:  rule.rules,
	}
}

// NextPossibleStates returns the statuses the proposal can move to from its
// current status.
func NextPossibleStates(p *models.Proposal) []models.ProposalStatus {
	return ValidTransitions(p.Status)
}

// IsComplete reports whether the proposal has reached the terminal status.
func IsComplete(p *models.Proposal) bool {
	return p.Status == models.StatusSent
}

// ProgressPercentage maps the proposal's position in the status chain to
// 0-100. Unknown statuses clamp to 0.
func ProgressPercentage(p *models.Proposal) float64 {
	idx := -1
	for i, s := range proposalStates {
		if s == p.Status {
			idx = i
			break
		}
	}
	pct := float64(idx) / float64(len(proposalStates)-1) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// WorkflowHistory reconstructs a best-effort history from the proposal's
// workflow timestamps, ascending. It is lossy: only review notes survive on
// the record, so intermediate notes cannot be recovered. Not an audit log.
func WorkflowHistory(p *models.Proposal) []WorkflowState {
	history := []WorkflowState{}

	if !p.CreatedAt.IsZero() {
		history = append(history, WorkflowState{
			Status:    models.StatusDraft,
			Timestamp: p.CreatedAt,
			Notes:     "Proposal created",
		})
	}

	if p.ReviewedAt != nil {
		notes := p.ReviewNotes
		if notes == "" {
			notes = "Proposal reviewed"
		}
		history = append(history, WorkflowState{
			Status:    models.StatusReview,
			Timestamp: *p.ReviewedAt,
			Notes:     notes,
		})
	}

	if p.SentAt != nil {
		history = append(history, WorkflowState{
			Status:    models.StatusSent,
			Timestamp: *p.SentAt,
			Notes:     "Proposal sent to client",
		})
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp.Before(history[j].Timestamp)
	})
	return history
}
