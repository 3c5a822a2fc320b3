package applications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/internal/members"
	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepo struct {
	applications map[uuid.UUID]*models.MembershipApplication
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{applications: map[uuid.UUID]*models.MembershipApplication{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(_ context.Context, application *models.MembershipApplication) error {
	f.applications[application.ID] = application
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.MembershipApplication, error) {
	application, ok := f.applications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *application
	return &copied, nil
}

func (f *fakeRepo) GetForReview(ctx context.Context, id uuid.UUID) (*models.MembershipApplication, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepo) HasPending(_ context.Context, memberID uuid.UUID) (bool, error) {
	for _, a := range f.applications {
		if a.MemberID == memberID && a.Status == enums.ReviewStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) List(_ context.Context, _ ListFilter) ([]models.MembershipApplication, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) UpdateReview(_ context.Context, application *models.MembershipApplication) error {
	f.applications[application.ID] = application
	return nil
}

type fakeMemberRepo struct {
	member        *models.Member
	profileFields map[string]any
}

func (f *fakeMemberRepo) WithTx(tx *gorm.DB) members.Repository { return f }

func (f *fakeMemberRepo) Create(_ context.Context, _ *models.Member) error { return nil }

func (f *fakeMemberRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Member, error) {
	if f.member == nil || f.member.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.member, nil
}

func (f *fakeMemberRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeMemberRepo) GetByEmail(_ context.Context, _ string) (*models.Member, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMemberRepo) List(_ context.Context, _ members.ListFilter) ([]models.Member, int64, error) {
	return nil, 0, nil
}

func (f *fakeMemberRepo) UpdateProfile(_ context.Context, _ uuid.UUID, fields map[string]any) error {
	f.profileFields = fields
	return nil
}

func (f *fakeMemberRepo) SaveBalanceAndStatus(_ context.Context, _ uuid.UUID, _ int, _ enums.MemberStatus, _ time.Time) error {
	return nil
}

func (f *fakeMemberRepo) ListForDeduction(_ context.Context, _ int) ([]models.Member, error) {
	return nil, nil
}

func (f *fakeMemberRepo) ListAdminIDs(_ context.Context) ([]uuid.UUID, error) { return nil, nil }

func (f *fakeMemberRepo) SumAllShares(_ context.Context) (int, error) { return 0, nil }

func (f *fakeMemberRepo) CountByStatus(_ context.Context) (map[enums.MemberStatus]int64, error) {
	return nil, nil
}

func newTestService(t *testing.T) (Service, *fakeRepo, *fakeMemberRepo) {
	t.Helper()
	repo := newFakeRepo()
	memberRepo := &fakeMemberRepo{member: &models.Member{ID: uuid.New()}}
	svc, err := NewService(Deps{
		Tx:      fakeTxRunner{},
		Repo:    repo,
		Members: memberRepo,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, memberRepo
}

func validSubmit(memberID uuid.UUID) SubmitInput {
	return SubmitInput{
		MemberID:  memberID,
		Type:      enums.ApplicationTypeSingle,
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.org",
		Address:   "12 Acacia Ave",
		Phone:     "+254700000000",
	}
}

func TestSubmitCreatesPendingApplication(t *testing.T) {
	svc, repo, memberRepo := newTestService(t)

	application, err := svc.Submit(context.Background(), validSubmit(memberRepo.member.ID))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if application.Status != enums.ReviewStatusPending {
		t.Fatalf("expected pending, got %s", application.Status)
	}
	if len(repo.applications) != 1 {
		t.Fatalf("expected one stored application, got %d", len(repo.applications))
	}
}

func TestSubmitRejectsSecondPending(t *testing.T) {
	svc, _, memberRepo := newTestService(t)

	if _, err := svc.Submit(context.Background(), validSubmit(memberRepo.member.ID)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_, err := svc.Submit(context.Background(), validSubmit(memberRepo.member.ID))
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSubmitDoubleRequiresSpouse(t *testing.T) {
	svc, _, memberRepo := newTestService(t)

	input := validSubmit(memberRepo.member.ID)
	input.Type = enums.ApplicationTypeDouble
	_, err := svc.Submit(context.Background(), input)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	spouse := "John Doe"
	input.Spouse = &spouse
	if _, err := svc.Submit(context.Background(), input); err != nil {
		t.Fatalf("Submit with spouse: %v", err)
	}
}

func TestReviewApprovalSetsMembershipType(t *testing.T) {
	svc, _, memberRepo := newTestService(t)

	application, err := svc.Submit(context.Background(), validSubmit(memberRepo.member.ID))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	decided, err := svc.Review(context.Background(), ReviewInput{
		ApplicationID: application.ID,
		ActorID:       uuid.New(),
		Decision:      enums.ReviewDecisionApprove,
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if decided.Status != enums.ReviewStatusApproved {
		t.Fatalf("expected approved, got %s", decided.Status)
	}
	if got := memberRepo.profileFields["membership_type"]; got != "single" {
		t.Fatalf("membership type = %v, want single", got)
	}
}

func TestReviewRejectionLeavesMemberUntouched(t *testing.T) {
	svc, _, memberRepo := newTestService(t)

	application, err := svc.Submit(context.Background(), validSubmit(memberRepo.member.ID))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := svc.Review(context.Background(), ReviewInput{
		ApplicationID: application.ID,
		ActorID:       uuid.New(),
		Decision:      enums.ReviewDecisionReject,
	}); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if memberRepo.profileFields != nil {
		t.Fatalf("profile should not change on rejection, got %v", memberRepo.profileFields)
	}

	_, err = svc.Review(context.Background(), ReviewInput{
		ApplicationID: application.ID,
		ActorID:       uuid.New(),
		Decision:      enums.ReviewDecisionApprove,
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
