package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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
	payments map[uuid.UUID]*models.Payment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{payments: map[uuid.UUID]*models.Payment{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(_ context.Context, payment *models.Payment) error {
	f.payments[payment.ID] = payment
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, ok := f.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *payment
	return &copied, nil
}

func (f *fakeRepo) GetForReview(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepo) List(_ context.Context, _ ListFilter) ([]models.Payment, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) UpdateReview(_ context.Context, payment *models.Payment) error {
	f.payments[payment.ID] = payment
	return nil
}

func (f *fakeRepo) SumApprovedAmount(_ context.Context) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeRepo) CountByStatus(_ context.Context) (map[enums.ReviewStatus]int64, error) {
	return nil, nil
}

type fakeMemberRepo struct {
	member *models.Member
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

func (f *fakeMemberRepo) UpdateProfile(_ context.Context, _ uuid.UUID, _ map[string]any) error {
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

func newTestService(t *testing.T) (Service, *fakeRepo, uuid.UUID) {
	t.Helper()
	repo := newFakeRepo()
	memberID := uuid.New()
	svc, err := NewService(Deps{
		Tx:      fakeTxRunner{},
		Repo:    repo,
		Members: &fakeMemberRepo{member: &models.Member{ID: memberID}},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, memberID
}

func TestSubmitCreatesPendingPayment(t *testing.T) {
	svc, repo, memberID := newTestService(t)

	payment, err := svc.Submit(context.Background(), SubmitInput{
		MemberID: memberID,
		Type:     enums.PaymentTypeActivationFee,
		Amount:   decimal.NewFromInt(100),
		Method:   enums.PaymentMethodMobileMoney,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if payment.Status != enums.ReviewStatusPending {
		t.Fatalf("expected pending, got %s", payment.Status)
	}
	if len(repo.payments) != 1 {
		t.Fatalf("expected one stored payment, got %d", len(repo.payments))
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, repo, memberID := newTestService(t)

	cases := []struct {
		name  string
		input SubmitInput
	}{
		{"missing member", SubmitInput{Type: enums.PaymentTypeShares, Amount: decimal.NewFromInt(1), Method: enums.PaymentMethodCash}},
		{"bad type", SubmitInput{MemberID: memberID, Type: "tips", Amount: decimal.NewFromInt(1), Method: enums.PaymentMethodCash}},
		{"bad method", SubmitInput{MemberID: memberID, Type: enums.PaymentTypeShares, Amount: decimal.NewFromInt(1), Method: "barter"}},
		{"zero amount", SubmitInput{MemberID: memberID, Type: enums.PaymentTypeShares, Amount: decimal.Zero, Method: enums.PaymentMethodCash}},
		{"negative amount", SubmitInput{MemberID: memberID, Type: enums.PaymentTypeShares, Amount: decimal.NewFromInt(-5), Method: enums.PaymentMethodCash}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tc.input)
			if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if len(repo.payments) != 0 {
		t.Fatalf("no payments should be created, got %d", len(repo.payments))
	}
}

func TestReviewDecidesExactlyOnce(t *testing.T) {
	svc, _, memberID := newTestService(t)
	actorID := uuid.New()

	payment, err := svc.Submit(context.Background(), SubmitInput{
		MemberID: memberID,
		Type:     enums.PaymentTypeMembershipSingle,
		Amount:   decimal.NewFromInt(250),
		Method:   enums.PaymentMethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	decided, err := svc.Review(context.Background(), ReviewInput{
		PaymentID: payment.ID,
		ActorID:   actorID,
		Decision:  enums.ReviewDecisionReject,
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if decided.Status != enums.ReviewStatusRejected {
		t.Fatalf("expected rejected, got %s", decided.Status)
	}
	if decided.ReviewedBy == nil || *decided.ReviewedBy != actorID {
		t.Fatalf("reviewer not recorded")
	}

	_, err = svc.Review(context.Background(), ReviewInput{
		PaymentID: payment.ID,
		ActorID:   actorID,
		Decision:  enums.ReviewDecisionApprove,
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestReviewUnknownPayment(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Review(context.Background(), ReviewInput{
		PaymentID: uuid.New(),
		ActorID:   uuid.New(),
		Decision:  enums.ReviewDecisionApprove,
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
