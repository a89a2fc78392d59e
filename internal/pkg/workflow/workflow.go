// Package workflow implements a sequential, role-gated approval chain.
//
// A Workflow walks an ordered list of levels. Each level needs one decision
// from an actor whose role is allowed to approve that level. The first
// rejection ends the chain; approval at the last level completes it.
package workflow

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/audit"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Decision string

const (
	DecisionOpen     Decision = "open"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionSkipped  Decision = "skipped"
)

// Externally visible status labels.
const (
	LabelPending     = "Pending"
	LabelUnderReview = "Under Review"
	LabelApproved    = "Approved"
	LabelRejected    = "Rejected"
	LabelCancelled   = "Cancelled"
)

var LabelValues = []string{LabelPending, LabelUnderReview, LabelApproved, LabelRejected, LabelCancelled}

// Audit actions
const (
	ActionSubmitted = "submitted"
	ActionApproved  = "approved"
	ActionRejected  = "rejected"
	ActionCancelled = "cancelled"
	ActionAdjusted  = "adjusted"
)

// Step is the decision record of one level.
type Step struct {
	Level      user.Level `json:"level"`
	Decision   Decision   `json:"decision"`
	ApproverID *string    `json:"approver_id,omitempty"`
	Comments   *string    `json:"comments,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
}

// Outcome describes the effect of an approval.
type Outcome struct {
	From      user.Level
	To        user.Level
	Completed bool
}

type Workflow struct {
	RequesterID string
	Steps       []Step
	Current     int
	Status      Status
	Trail       audit.Trail
}

// Start builds a workflow for a requester. Levels at or below the requester's
// own rank are skipped, since a peer cannot approve a peer. When the requester
// outranks every level the last level still applies.
func Start(levels []user.Level, requesterID string, requesterRole user.Role, at time.Time) (*Workflow, error) {
	if len(levels) == 0 {
		return nil, ErrEmptyChain
	}
	if requesterID == "" {
		return nil, ErrRequesterRequired
	}

	steps := make([]Step, len(levels))
	start := -1
	for i, level := range levels {
		steps[i] = Step{Level: level, Decision: DecisionSkipped}
		if level.Rank() > requesterRole.Rank() {
			steps[i].Decision = DecisionOpen
			if start < 0 {
				start = i
			}
		}
	}
	if start < 0 {
		start = len(steps) - 1
		steps[start].Decision = DecisionOpen
	}

	w := &Workflow{
		RequesterID: requesterID,
		Steps:       steps,
		Current:     start,
		Status:      StatusPending,
	}
	w.Trail.Append(ActionSubmitted, requesterID, fmt.Sprintf("routed to %s", steps[start].Level), at)
	return w, nil
}

// Restore rebuilds a workflow from persisted state.
func Restore(requesterID string, steps []Step, label string, trail audit.Trail) (*Workflow, error) {
	w := &Workflow{
		RequesterID: requesterID,
		Steps:       steps,
		Trail:       trail,
		Current:     len(steps) - 1,
	}

	switch label {
	case LabelPending, LabelUnderReview:
		w.Status = StatusPending
	case LabelApproved:
		w.Status = StatusCompleted
	case LabelRejected:
		w.Status = StatusRejected
	case LabelCancelled:
		w.Status = StatusCancelled
	default:
		return nil, fmt.Errorf("%w: unknown status label %q", ErrInvalidState, label)
	}

	if w.Status == StatusPending {
		next := w.nextOpen(-1)
		if next < 0 {
			return nil, fmt.Errorf("%w: pending workflow has no open level", ErrInvalidState)
		}
		w.Current = next
	}
	return w, nil
}

// CurrentLevel returns the level waiting for a decision, or LevelCompleted
// once the workflow is terminal.
func (w *Workflow) CurrentLevel() user.Level {
	if w.Status != StatusPending {
		return user.LevelCompleted
	}
	return w.Steps[w.Current].Level
}

// Label derives the externally visible status.
func (w *Workflow) Label() string {
	switch w.Status {
	case StatusCompleted:
		return LabelApproved
	case StatusRejected:
		return LabelRejected
	case StatusCancelled:
		return LabelCancelled
	}
	for _, s := range w.Steps {
		if s.Decision == DecisionApproved {
			return LabelUnderReview
		}
	}
	return LabelPending
}

// IsTerminal reports whether no further transition is possible.
func (w *Workflow) IsTerminal() bool {
	return w.Status != StatusPending
}

// FinalApproverID is the actor of the last recorded decision.
func (w *Workflow) FinalApproverID() *string {
	for i := len(w.Steps) - 1; i >= 0; i-- {
		d := w.Steps[i].Decision
		if d == DecisionApproved || d == DecisionRejected {
			id := *w.Steps[i].ApproverID
			return &id
		}
	}
	return nil
}

// Approve records an approval at the current level and advances the chain.
func (w *Workflow) Approve(actor user.Actor, comments string, at time.Time) (Outcome, error) {
	step, err := w.authorize(actor)
	if err != nil {
		return Outcome{}, err
	}

	w.decide(step, DecisionApproved, actor, comments, at)
	outcome := Outcome{From: step.Level}

	next := w.nextOpen(w.Current)
	if next < 0 {
		w.Status = StatusCompleted
		outcome.To = user.LevelCompleted
		outcome.Completed = true
	} else {
		w.Current = next
		outcome.To = w.Steps[next].Level
	}

	w.Trail.Append(ActionApproved, actor.UserID, fmt.Sprintf("%s -> %s", outcome.From, outcome.To), at)
	return outcome, nil
}

// Reject terminates the workflow regardless of the position in the chain.
func (w *Workflow) Reject(actor user.Actor, reason string, at time.Time) error {
	step, err := w.authorize(actor)
	if err != nil {
		return err
	}

	w.decide(step, DecisionRejected, actor, reason, at)
	w.Status = StatusRejected
	w.Trail.Append(ActionRejected, actor.UserID, fmt.Sprintf("%s: %s", step.Level, reason), at)
	return nil
}

// Cancel withdraws the request. Only the requester may cancel, and only
// before any level has approved it.
func (w *Workflow) Cancel(requesterID string, at time.Time) error {
	if requesterID != w.RequesterID {
		return ErrNotRequester
	}
	if w.Label() != LabelPending {
		return ErrAlreadyProcessed
	}

	w.Status = StatusCancelled
	w.Trail.Append(ActionCancelled, requesterID, "", at)
	return nil
}

func (w *Workflow) authorize(actor user.Actor) (*Step, error) {
	if w.IsTerminal() {
		return nil, ErrAlreadyProcessed
	}
	step := &w.Steps[w.Current]
	if !actor.Capability().CanApprove(step.Level) {
		return nil, ErrUnauthorized
	}
	if actor.EmployeeID != "" && actor.EmployeeID == w.RequesterID {
		return nil, ErrSelfApproval
	}
	if step.Decision != DecisionOpen {
		return nil, ErrAlreadyProcessed
	}
	return step, nil
}

func (w *Workflow) decide(step *Step, decision Decision, actor user.Actor, comments string, at time.Time) {
	approverID := actor.UserID
	decidedAt := at.UTC()
	step.Decision = decision
	step.ApproverID = &approverID
	step.DecidedAt = &decidedAt
	if comments != "" {
		step.Comments = &comments
	}
}

func (w *Workflow) nextOpen(after int) int {
	for i := after + 1; i < len(w.Steps); i++ {
		if w.Steps[i].Decision == DecisionOpen {
			return i
		}
	}
	return -1
}
