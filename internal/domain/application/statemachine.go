package application

import "time"

// Approve moves a pending application to approved and returns the patch to
// persist. A decided application is left untouched.
func (a *Application) Approve(decidedBy, loanID string, now time.Time) (Transition, error) {
	if !a.Status.CanDecide() {
		return Transition{}, ErrAlreadyProcessed
	}
	t := Transition{
		Status:    StatusApproved,
		DecidedAt: now,
		DecidedBy: decidedBy,
		LoanID:    loanID,
	}
	a.Apply(t)
	return t, nil
}

// Reject moves a pending application to rejected. reason must already be
// validated.
func (a *Application) Reject(decidedBy, reason string, now time.Time) (Transition, error) {
	if !a.Status.CanDecide() {
		return Transition{}, ErrAlreadyProcessed
	}
	t := Transition{
		Status:    StatusRejected,
		DecidedAt: now,
		DecidedBy: decidedBy,
		Reason:    reason,
	}
	a.Apply(t)
	return t, nil
}

// Apply copies a transition onto the record. Stores call it after their
// conditional write succeeds.
func (a *Application) Apply(t Transition) {
	at := t.DecidedAt
	a.Status = t.Status
	switch t.Status {
	case StatusApproved:
		a.ApprovedAt = &at
		a.ApprovedBy = t.DecidedBy
		a.LoanID = t.LoanID
	case StatusRejected:
		a.RejectedAt = &at
		a.RejectedBy = t.DecidedBy
		a.RejectionReason = t.Reason
	}
	a.Version++
}
