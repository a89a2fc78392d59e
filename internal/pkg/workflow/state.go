package workflow

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/audit"
)

// State is the persisted form of a workflow, embedded by request entities.
type State struct {
	Status          string
	CurrentLevel    user.Level
	Approvals       []Step
	FinalApproverID *string
	AuditTrail      audit.Trail
}

// Begin starts a workflow for the requester and records its initial state.
func (s *State) Begin(levels []user.Level, requesterID string, requesterRole user.Role, at time.Time) (*Workflow, error) {
	w, err := Start(levels, requesterID, requesterRole, at)
	if err != nil {
		return nil, err
	}
	s.Sync(w)
	return w, nil
}

// Workflow rebuilds the engine from the persisted state.
func (s *State) Workflow(requesterID string) (*Workflow, error) {
	steps := make([]Step, len(s.Approvals))
	copy(steps, s.Approvals)
	return Restore(requesterID, steps, s.Status, s.AuditTrail.Clone())
}

// Sync copies the engine state back into s.
func (s *State) Sync(w *Workflow) {
	s.Status = w.Label()
	s.CurrentLevel = w.CurrentLevel()
	s.Approvals = w.Steps
	s.AuditTrail = w.Trail
	if w.Status == StatusCompleted || w.Status == StatusRejected {
		s.FinalApproverID = w.FinalApproverID()
	}
}

// IsOpen reports whether the request still awaits a decision.
func (s *State) IsOpen() bool {
	return s.Status == LabelPending || s.Status == LabelUnderReview
}

// ApproverIDs lists everyone who recorded a decision.
func (s *State) ApproverIDs() []string {
	var ids []string
	for _, step := range s.Approvals {
		if step.ApproverID != nil {
			ids = append(ids, *step.ApproverID)
		}
	}
	return ids
}
