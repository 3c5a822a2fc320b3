package members

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/internal/activation"
	"github.com/harambee-coop/membership-backend/internal/notifications"
	"github.com/harambee-coop/membership-backend/pkg/db"
	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
	"github.com/harambee-coop/membership-backend/pkg/logger"
	"github.com/harambee-coop/membership-backend/pkg/mailer"
	"github.com/harambee-coop/membership-backend/pkg/pagination"
)

// Service exposes member profile and directory operations, plus the admin
// approval actions that flip a member's status by hand.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Member, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*models.Member, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Activate(ctx context.Context, id uuid.UUID) (*models.Member, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*models.Member, error)
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	tx     TxRunner
	notifs notifications.Repository
	engine *activation.Engine
	mail   mailer.Mailer
	logg   *logger.Logger
}

// Deps carries the service dependencies.
type Deps struct {
	Repo          Repository
	Tx            TxRunner
	Notifications notifications.Repository
	Engine        *activation.Engine
	Mailer        mailer.Mailer
	Logger        *logger.Logger
}

// UpdateProfileInput carries the member-editable profile fields. Nil fields
// are left untouched.
type UpdateProfileInput struct {
	FirstName             *string
	LastName              *string
	Phone                 *string
	Address               *string
	City                  *string
	State                 *string
	ZipCode               *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
}

// ListParams filters the member directory.
type ListParams struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// ListResult wraps a directory page with the total row count.
type ListResult struct {
	Items []models.Member `json:"items"`
	Total int64           `json:"total"`
}

// NewService wires member dependencies.
func NewService(deps Deps) (Service, error) {
	if deps.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "members repository required")
	}
	if deps.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if deps.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if deps.Engine == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activation engine required")
	}
	if deps.Mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mailer required")
	}
	return &service{
		repo:   deps.Repo,
		tx:     deps.Tx,
		notifs: deps.Notifications,
		engine: deps.Engine,
		mail:   deps.Mailer,
		logg:   deps.Logger,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}

	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	return member, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*models.Member, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}

	fields := map[string]any{}
	setString := func(column string, value *string) {
		if value != nil {
			fields[column] = *value
		}
	}
	setString("first_name", input.FirstName)
	setString("last_name", input.LastName)
	setString("phone", input.Phone)
	setString("address", input.Address)
	setString("city", input.City)
	setString("state", input.State)
	setString("zip_code", input.ZipCode)
	setString("emergency_contact_name", input.EmergencyContactName)
	setString("emergency_contact_phone", input.EmergencyContactPhone)

	if first, ok := fields["first_name"]; ok && first == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name cannot be empty")
	}
	if last, ok := fields["last_name"]; ok && last == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "last name cannot be empty")
	}

	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		if err := s.repo.UpdateProfile(ctx, id, fields); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update member profile")
		}
	}
	return s.Get(ctx, id)
}

// Activate approves a member's registration. The member goes active regardless
// of their share balance; the next reconcile pass may still pull them back down.
// Calling it on an already active member is a no-op.
func (s *service) Activate(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}

	now := time.Now().UTC()
	var updated *models.Member
	var outbound *activation.OutboundEmail

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		member, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
		}

		outcome, err := s.engine.Activate(ctx, s.notifs.WithTx(tx), member, now)
		if err != nil {
			return err
		}
		if outcome.Transition != activation.TransitionNone {
			if err := repo.SaveBalanceAndStatus(ctx, member.ID, member.SharesOwned, member.Status, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist member status")
			}
		}

		updated = member
		outbound = outcome.Email
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Email goes out only after the transaction committed. Delivery failures
	// are logged and swallowed.
	if outbound != nil {
		if mailErr := s.mail.Send(ctx, outbound.To, outbound.Subject, outbound.Body); mailErr != nil && s.logg != nil {
			s.logg.Error(ctx, "activation email failed", mailErr)
		}
	}

	return updated, nil
}

// Deactivate suspends a member by hand. No notification or email goes out;
// only the balance path announces deactivations.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}

	now := time.Now().UTC()
	var updated *models.Member

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		member, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
		}

		outcome, err := s.engine.Deactivate(ctx, member, now)
		if err != nil {
			return err
		}
		if outcome.Transition != activation.TransitionNone {
			if err := repo.SaveBalanceAndStatus(ctx, member.ID, member.SharesOwned, member.Status, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist member status")
			}
		}

		updated = member
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := ListFilter{
		Search: params.Search,
		Limit:  pagination.NormalizeLimit(params.Limit),
		Offset: params.Offset,
	}
	if params.Status != "" {
		status, err := enums.ParseMemberStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		query.Status = &status
	}

	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	return &ListResult{Items: rows, Total: total}, nil
}

// ensure db.Client satisfies TxRunner
var _ TxRunner = (*db.Client)(nil)
