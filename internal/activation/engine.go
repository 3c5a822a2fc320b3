// Package activation owns the member status state machine. Every status write
// in the system flows through the engine; no other code assigns member status.
package activation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
)

// Transition classifies what a reconcile pass did to a member's status.
type Transition string

const (
	// TransitionNone means the status did not change.
	TransitionNone Transition = "none"
	// TransitionActivated means the member crossed above the threshold.
	TransitionActivated Transition = "activated"
	// TransitionDeactivated means an active member fell to the threshold or below.
	TransitionDeactivated Transition = "deactivated"
	// TransitionLapsed means a registered member settled at or below the
	// threshold without ever activating. No side effects fire.
	TransitionLapsed Transition = "lapsed"
)

// OutboundEmail is a message the caller must dispatch after its transaction
// commits. Reconcile never talks to SMTP itself.
type OutboundEmail struct {
	To      string
	Subject string
	Body    string
}

// Outcome reports the result of one reconcile pass.
type Outcome struct {
	Previous   enums.MemberStatus
	Next       enums.MemberStatus
	Transition Transition
	Email      *OutboundEmail
}

// NotificationStore is the slice of the notifications repository the engine
// needs. Callers pass a transaction-bound instance so notification writes
// commit or roll back with the status change.
type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	MarkTypeRead(ctx context.Context, memberID uuid.UUID, kind enums.NotificationType, now time.Time) (int64, error)
}

// Engine evaluates share balances against the activation threshold.
type Engine struct {
	threshold int
}

// NewEngine builds an engine with the configured activation threshold.
func NewEngine(threshold int) (*Engine, error) {
	if threshold <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activation threshold must be positive")
	}
	return &Engine{threshold: threshold}, nil
}

// Threshold returns the configured share threshold.
func (e *Engine) Threshold() int {
	return e.threshold
}

// Target returns the status a balance maps to. A balance strictly above the
// threshold activates; at or below it deactivates.
func (e *Engine) Target(balance int) enums.MemberStatus {
	if balance > e.threshold {
		return enums.MemberStatusActive
	}
	return enums.MemberStatusInactive
}

// Reconcile applies the balance to the member in memory and performs the
// notification side effects for the resulting transition. The caller is
// responsible for persisting the member on the same transaction as the store,
// and for dispatching the returned email after commit.
//
// Side effects fire only on a real status change:
//   - active -> inactive writes a low-shares notification and returns the
//     deactivation email
//   - any -> active marks unread low-shares notifications read and sends
//     nothing
//   - registered -> inactive is silent
func (e *Engine) Reconcile(ctx context.Context, store NotificationStore, member *models.Member, balance int, now time.Time) (Outcome, error) {
	if member == nil {
		return Outcome{}, pkgerrors.New(pkgerrors.CodeValidation, "member required")
	}
	if store == nil {
		return Outcome{}, pkgerrors.New(pkgerrors.CodeDependency, "notification store required")
	}
	if balance < 0 {
		balance = 0
	}

	previous := member.Status
	next := e.Target(balance)

	member.SharesOwned = balance
	member.Status = next
	member.UpdatedAt = now

	outcome := Outcome{Previous: previous, Next: next, Transition: TransitionNone}
	if previous == next {
		return outcome, nil
	}

	switch {
	case next == enums.MemberStatusActive:
		outcome.Transition = TransitionActivated
		if _, err := store.MarkTypeRead(ctx, member.ID, enums.NotificationTypeLowShares, now); err != nil {
			return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear low shares notifications")
		}

	case previous == enums.MemberStatusActive:
		outcome.Transition = TransitionDeactivated
		notification := &models.Notification{
			ID:       uuid.New(),
			MemberID: member.ID,
			Type:     enums.NotificationTypeLowShares,
			Title:    "Account Deactivated - Low Shares",
			Message:  fmt.Sprintf("Your account has been deactivated. Current shares: %d. Minimum required: %d shares.", balance, e.threshold),
		}
		if err := store.Create(ctx, notification); err != nil {
			return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create low shares notification")
		}
		outcome.Email = e.deactivationEmail(member, balance)

	default:
		// registered -> inactive settles silently
		outcome.Transition = TransitionLapsed
	}

	return outcome, nil
}

// Activate applies an admin approval, moving the member to active regardless
// of their balance. Already-active members pass through untouched. On a real
// transition the member gets an activation notification and the returned email;
// any unread low-shares notifications are cleared.
func (e *Engine) Activate(ctx context.Context, store NotificationStore, member *models.Member, now time.Time) (Outcome, error) {
	if member == nil {
		return Outcome{}, pkgerrors.New(pkgerrors.CodeValidation, "member required")
	}
	if store == nil {
		return Outcome{}, pkgerrors.New(pkgerrors.CodeDependency, "notification store required")
	}

	previous := member.Status
	outcome := Outcome{Previous: previous, Next: enums.MemberStatusActive, Transition: TransitionNone}
	if previous == enums.MemberStatusActive {
		return outcome, nil
	}

	member.Status = enums.MemberStatusActive
	member.UpdatedAt = now
	outcome.Transition = TransitionActivated

	if _, err := store.MarkTypeRead(ctx, member.ID, enums.NotificationTypeLowShares, now); err != nil {
		return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear low shares notifications")
	}
	notification := &models.Notification{
		ID:       uuid.New(),
		MemberID: member.ID,
		Type:     enums.NotificationTypeGeneral,
		Title:    "Account Activated",
		Message:  "Your account has been activated! You can now access all services.",
	}
	if err := store.Create(ctx, notification); err != nil {
		return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create activation notification")
	}

	body := fmt.Sprintf(
		"Dear %s,\n\nYour account has been activated! You can now log in and access all services.\n\nWelcome!\n\nThank you.",
		member.FirstName,
	)
	outcome.Email = &OutboundEmail{
		To:      member.Email,
		Subject: "Account Activated",
		Body:    body,
	}
	return outcome, nil
}

// Deactivate applies an admin deactivation. It writes only the status; unlike
// the balance path it emits no notification and no email, because the member's
// shares were not the cause. Already-inactive members pass through untouched.
func (e *Engine) Deactivate(_ context.Context, member *models.Member, now time.Time) (Outcome, error) {
	if member == nil {
		return Outcome{}, pkgerrors.New(pkgerrors.CodeValidation, "member required")
	}

	previous := member.Status
	outcome := Outcome{Previous: previous, Next: enums.MemberStatusInactive, Transition: TransitionNone}
	if previous == enums.MemberStatusInactive {
		return outcome, nil
	}

	member.Status = enums.MemberStatusInactive
	member.UpdatedAt = now
	outcome.Transition = TransitionDeactivated
	return outcome, nil
}

func (e *Engine) deactivationEmail(member *models.Member, balance int) *OutboundEmail {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour account has been deactivated because your shares balance (%d) is below the minimum required (%d shares).\n\nPlease purchase more shares to reactivate your account.\n\nThank you.",
		member.FirstName, balance, e.threshold,
	)
	return &OutboundEmail{
		To:      member.Email,
		Subject: "Account Deactivated - Low Shares Balance",
		Body:    body,
	}
}
