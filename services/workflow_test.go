package services

import (
	"strings"
	"testing"
	"time"

	"bidcraft-backend/models"
)

func reviewableProposal() *models.Proposal {
	return &models.Proposal{
		Status:             models.StatusDraft,
		ClientName:         "Acme Glazing Co",
		ClientEmail:        "buyer@acme.test",
		ClientPhone:        "+15550100",
		ClientAddress:      "12 Main St",
		ProjectName:        "Storefront refit",
		ProjectDescription: "Replace entry storefront glass",
	}
}

func TestTransitionChainIsLinear(t *testing.T) {
	chain := []models.ProposalStatus{
		models.StatusDraft,
		models.StatusReview,
		models.StatusReadyToSend,
		models.StatusSent,
	}

	for i, status := range chain {
		next := ValidTransitions(status)
		if len(next) > 1 {
			t.Fatalf("status %s: expected at most one next state, got %v", status, next)
		}
		if i < len(chain)-1 {
			if len(next) != 1 || next[0] != chain[i+1] {
				t.Fatalf("status %s: expected next state %s, got %v", status, chain[i+1], next)
			}
		} else if len(next) != 0 {
			t.Fatalf("terminal status %s: expected no next states, got %v", status, next)
		}
	}
}

func TestNoBackwardOrSkipTransitions(t *testing.T) {
	cases := []struct {
		from, to models.ProposalStatus
	}{
		{models.StatusReview, models.StatusDraft},
		{models.StatusDraft, models.StatusSent},
		{models.StatusDraft, models.StatusReadyToSend},
		{models.StatusSent, models.StatusDraft},
		{models.StatusSent, models.StatusReview},
		{models.StatusSent, models.StatusReadyToSend},
		{models.StatusReadyToSend, models.StatusReview},
	}
	for _, tc := range cases {
		if CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be disallowed", tc.from, tc.to)
		}
	}

	if !CanTransition(models.StatusDraft, models.StatusReview) {
		t.Fatalf("expected draft -> review to be allowed")
	}
}

func TestUnknownStatusHasNoTransitions(t *testing.T) {
	if got := ValidTransitions(models.ProposalStatus("archived")); len(got) != 0 {
		t.Fatalf("expected no transitions for unknown status, got %v", got)
	}
}

func TestValidateTransitionUndefinedPair(t *testing.T) {
	p := reviewableProposal()
	result := ValidateTransition(models.StatusDraft, models.StatusSent, p)
	if result.IsValid {
		t.Fatalf("expected draft -> sent to be invalid")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected a single invalid-transition error, got %v", result.Errors)
	}
	if result.Errors[0] != "Invalid transition from draft to sent" {
		t.Fatalf("unexpected error message: %q", result.Errors[0])
	}
}

func TestDraftToReviewGating(t *testing.T) {
	p := reviewableProposal()
	p.ClientEmail = ""

	result := ValidateTransition(models.StatusDraft, models.StatusReview, p)
	if result.IsValid {
		t.Fatalf("expected missing client email to block the transition")
	}
	found := false
	for _, e := range result.Errors {
		if strings.Contains(e, "email") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an email-related error, got %v", result.Errors)
	}

	p.ClientEmail = "buyer@acme.test"
	result = ValidateTransition(models.StatusDraft, models.StatusReview, p)
	if !result.IsValid {
		t.Fatalf("expected transition to pass, got errors %v", result.Errors)
	}
}

func TestDraftToReviewReportsAllErrorsAtOnce(t *testing.T) {
	p := &models.Proposal{Status: models.StatusDraft}
	result := ValidateTransition(models.StatusDraft, models.StatusReview, p)
	if result.IsValid {
		t.Fatalf("expected empty proposal to be blocked")
	}
	if len(result.Errors) != 4 {
		t.Fatalf("expected all 4 unmet conditions reported together, got %v", result.Errors)
	}
}

func TestReviewToReadyToSendGating(t *testing.T) {
	p := reviewableProposal()
	p.Status = models.StatusReview
	p.TotalAmount = 1500

	result := ValidateTransition(models.StatusReview, models.StatusReadyToSend, p)
	if result.IsValid {
		t.Fatalf("expected unreviewed proposal to be blocked")
	}

	now := time.Now()
	p.ReviewedAt = &now
	result = ValidateTransition(models.StatusReview, models.StatusReadyToSend, p)
	if !result.IsValid {
		t.Fatalf("expected reviewed proposal to pass, got errors %v", result.Errors)
	}

	p.TotalAmount = 0
	result = ValidateTransition(models.StatusReview, models.StatusReadyToSend, p)
	if result.IsValid {
		t.Fatalf("expected zero total to block the transition")
	}
}

func TestReviewToReadyToSendWarnings(t *testing.T) {
	p := reviewableProposal()
	p.Status = models.StatusReview
	p.TotalAmount = 1500
	now := time.Now()
	p.ReviewedAt = &now
	p.ClientPhone = ""
	p.ClientAddress = ""

	result := ValidateTransition(models.StatusReview, models.StatusReadyToSend, p)
	if !result.IsValid {
		t.Fatalf("warnings must not block, got errors %v", result.Errors)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected phone and address warnings, got %v", result.Warnings)
	}
}

func TestReadyToSendToSentGating(t *testing.T) {
	p := reviewableProposal()
	p.Status = models.StatusReadyToSend
	p.ClientEmail = ""

	result := ValidateTransition(models.StatusReadyToSend, models.StatusSent, p)
	if result.IsValid {
		t.Fatalf("expected missing email to block sending")
	}

	p.ClientEmail = "buyer@acme.test"
	result = ValidateTransition(models.StatusReadyToSend, models.StatusSent, p)
	if !result.IsValid {
		t.Fatalf("expected sending to pass, got errors %v", result.Errors)
	}
}

func TestValidateTransitionDoesNotMutate(t *testing.T) {
	p := reviewableProposal()
	beforeStatus, beforeEmail, beforeTotal := p.Status, p.ClientEmail, p.TotalAmount
	ValidateTransition(models.StatusDraft, models.StatusReview, p)
	if p.Status != beforeStatus || p.ClientEmail != beforeEmail || p.TotalAmount != beforeTotal {
		t.Fatalf("proposal was mutated during validation")
	}
}

func TestTransitionRequirements(t *testing.T) {
	req := GetTransitionRequirements(models.StatusReview, models.StatusReadyToSend)
	if !req.RequiresApproval {
		t.Fatalf("expected review -> ready_to_send to require approval")
	}
	if len(req.ValidationRules) == 0 {
		t.Fatalf("expected validation rules to be listed")
	}

	req = GetTransitionRequirements(models.StatusSent, models.StatusDraft)
	if req.RequiresApproval || len(req.ValidationRules) != 0 {
		t.Fatalf("expected empty requirements for undefined transition, got %+v", req)
	}
}

func TestProgressPercentageMonotonic(t *testing.T) {
	want := []struct {
		status models.ProposalStatus
		pct    float64
	}{
		{models.StatusDraft, 0},
		{models.StatusReview, 100.0 / 3},
		{models.StatusReadyToSend, 200.0 / 3},
		{models.StatusSent, 100},
	}
	prev := -1.0
	for _, w := range want {
		p := &models.Proposal{Status: w.status}
		got := ProgressPercentage(p)
		if got < prev {
			t.Fatalf("progress decreased at %s: %v -> %v", w.status, prev, got)
		}
		if diff := got - w.pct; diff > 0.01 || diff < -0.01 {
			t.Fatalf("status %s: expected progress %.2f, got %.2f", w.status, w.pct, got)
		}
		prev = got
	}

	if got := ProgressPercentage(&models.Proposal{Status: "bogus"}); got != 0 {
		t.Fatalf("unknown status should clamp to 0, got %v", got)
	}
}

func TestIsComplete(t *testing.T) {
	if IsComplete(&models.Proposal{Status: models.StatusReadyToSend}) {
		t.Fatalf("ready_to_send is not complete")
	}
	if !IsComplete(&models.Proposal{Status: models.StatusSent}) {
		t.Fatalf("sent is complete")
	}
}

func TestWorkflowHistory(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	reviewed := created.Add(48 * time.Hour)
	sent := created.Add(96 * time.Hour)

	p := reviewableProposal()
	p.Status = models.StatusSent
	p.CreatedAt = created
	p.ReviewedAt = &reviewed
	p.SentAt = &sent
	p.ReviewNotes = "Checked measurements"

	history := WorkflowHistory(p)
	if len(history) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.Before(history[i-1].Timestamp) {
			t.Fatalf("history not sorted ascending: %v", history)
		}
	}
	if history[0].Status != models.StatusDraft || history[0].Notes != "Proposal created" {
		t.Fatalf("unexpected first entry: %+v", history[0])
	}
	if history[1].Notes != "Checked measurements" {
		t.Fatalf("review notes should attach to the review entry, got %q", history[1].Notes)
	}
	if history[2].Status != models.StatusSent {
		t.Fatalf("unexpected last entry: %+v", history[2])
	}
}

func TestWorkflowHistoryIsLossy(t *testing.T) {
	// A draft that was never reviewed or sent only has its creation entry;
	// anything else is unrecoverable from the record.
	p := reviewableProposal()
	p.CreatedAt = time.Now()

	history := WorkflowHistory(p)
	if len(history) != 1 {
		t.Fatalf("expected only the creation entry, got %d", len(history))
	}
}
