package shares

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/internal/activation"
	"github.com/harambee-coop/membership-backend/internal/members"
	"github.com/harambee-coop/membership-backend/internal/notifications"
	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
	"github.com/harambee-coop/membership-backend/pkg/pagination"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepo struct {
	entries     map[uuid.UUID]*models.ShareLedgerEntry
	approvedSum int
	created     []*models.ShareLedgerEntry
	reviewSaved *models.ShareLedgerEntry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: map[uuid.UUID]*models.ShareLedgerEntry{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(_ context.Context, entry *models.ShareLedgerEntry) error {
	f.created = append(f.created, entry)
	f.entries[entry.ID] = entry
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.ShareLedgerEntry, error) {
	entry, ok := f.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeRepo) GetForReview(ctx context.Context, id uuid.UUID) (*models.ShareLedgerEntry, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepo) List(_ context.Context, _ ListFilter) ([]models.ShareLedgerEntry, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) UpdateReview(_ context.Context, entry *models.ShareLedgerEntry) error {
	f.reviewSaved = entry
	f.entries[entry.ID] = entry
	return nil
}

func (f *fakeRepo) SumApproved(_ context.Context, _ uuid.UUID) (int, error) {
	return f.approvedSum, nil
}

func (f *fakeRepo) SumApprovedAll(_ context.Context) (int, error) { return f.approvedSum, nil }

func (f *fakeRepo) CountByStatus(_ context.Context) (map[enums.ReviewStatus]int64, error) {
	return nil, nil
}

type fakeMemberRepo struct {
	member      *models.Member
	savedShares int
	savedStatus enums.MemberStatus
	saved       bool
	lockedReads int
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
	f.lockedReads++
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

func (f *fakeMemberRepo) SaveBalanceAndStatus(_ context.Context, _ uuid.UUID, shares int, status enums.MemberStatus, _ time.Time) error {
	f.saved = true
	f.savedShares = shares
	f.savedStatus = status
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

type fakeNotifRepo struct {
	created    []*models.Notification
	markedRead int
}

func (f *fakeNotifRepo) WithTx(tx *gorm.DB) notifications.Repository { return f }

func (f *fakeNotifRepo) Create(_ context.Context, n *models.Notification) error {
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotifRepo) List(_ context.Context, _ notifications.ListFilter) ([]models.Notification, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (f *fakeNotifRepo) MarkRead(_ context.Context, _, _ uuid.UUID, _ time.Time) (notifications.MarkResult, error) {
	return notifications.MarkResult{}, nil
}

func (f *fakeNotifRepo) MarkAllRead(_ context.Context, _ uuid.UUID, _ time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeNotifRepo) MarkTypeRead(_ context.Context, _ uuid.UUID, _ enums.NotificationType, _ time.Time) (int64, error) {
	f.markedRead++
	return 1, nil
}

func (f *fakeNotifRepo) Delete(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeNotifRepo) CountUnread(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeNotifRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeMailer struct {
	sent []sentEmail
	err  error
}

type sentEmail struct {
	to      string
	subject string
}

func (f *fakeMailer) Send(_ context.Context, to, subject, _ string) error {
	f.sent = append(f.sent, sentEmail{to: to, subject: subject})
	return f.err
}

func newTestService(t *testing.T, repo *fakeRepo, memberRepo *fakeMemberRepo, notifRepo *fakeNotifRepo, mail *fakeMailer) Service {
	t.Helper()

	engine, err := activation.NewEngine(20)
	if err != nil {
		t.Fatalf("unexpected engine error: %v", err)
	}
	svc, err := NewService(Deps{
		Tx:            fakeTxRunner{},
		Repo:          repo,
		Members:       memberRepo,
		Notifications: notifRepo,
		Engine:        engine,
		Mailer:        mail,
		UnitPrice:     "20",
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestSubmit_ComputesAmountFromUnitPrice(t *testing.T) {
	repo := newFakeRepo()
	memberRepo := &fakeMemberRepo{member: &models.Member{ID: uuid.New(), Status: enums.MemberStatusRegistered}}
	svc := newTestService(t, repo, memberRepo, &fakeNotifRepo{}, &fakeMailer{})

	entry, err := svc.Submit(context.Background(), SubmitInput{MemberID: memberRepo.member.ID, Shares: 25})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	if entry.Status != enums.ReviewStatusPending {
		t.Fatalf("expected pending entry, got %s", entry.Status)
	}
	if !entry.AmountPaid.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected amount 500, got %s", entry.AmountPaid)
	}
}

func TestSubmit_RejectsNonPositiveShares(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeMemberRepo{}, &fakeNotifRepo{}, &fakeMailer{})

	for _, shares := range []int{0, -3} {
		_, err := svc.Submit(context.Background(), SubmitInput{MemberID: uuid.New(), Shares: shares})
		if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %d shares, got %v", shares, err)
		}
	}
}

func TestSubmit_UnknownMember(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeMemberRepo{}, &fakeNotifRepo{}, &fakeMailer{})

	_, err := svc.Submit(context.Background(), SubmitInput{MemberID: uuid.New(), Shares: 5})
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestReview_ApprovalActivatesMember(t *testing.T) {
	member := &models.Member{
		ID:        uuid.New(),
		Email:     "amina@example.org",
		FirstName: "Amina",
		Status:    enums.MemberStatusRegistered,
	}
	repo := newFakeRepo()
	entry := &models.ShareLedgerEntry{
		ID:              uuid.New(),
		MemberID:        member.ID,
		SharesRequested: 25,
		Status:          enums.ReviewStatusPending,
	}
	repo.entries[entry.ID] = entry
	repo.approvedSum = 25

	memberRepo := &fakeMemberRepo{member: member}
	mail := &fakeMailer{}
	svc := newTestService(t, repo, memberRepo, &fakeNotifRepo{}, mail)

	result, err := svc.Review(context.Background(), ReviewInput{
		EntryID:  entry.ID,
		ActorID:  uuid.New(),
		Decision: enums.ReviewDecisionApprove,
	})
	if err != nil {
		t.Fatalf("unexpected review error: %v", err)
	}

	if result.Balance != 25 {
		t.Fatalf("expected balance 25, got %d", result.Balance)
	}
	if result.NewStatus != enums.MemberStatusActive {
		t.Fatalf("expected active status, got %s", result.NewStatus)
	}
	if result.Transition != activation.TransitionActivated {
		t.Fatalf("expected activation, got %s", result.Transition)
	}
	if !memberRepo.saved || memberRepo.savedShares != 25 || memberRepo.savedStatus != enums.MemberStatusActive {
		t.Fatalf("expected member saved with 25/active, got %d/%s", memberRepo.savedShares, memberRepo.savedStatus)
	}
	if len(mail.sent) != 0 {
		t.Fatal("activation must not send email")
	}
	if repo.reviewSaved == nil || repo.reviewSaved.ReviewedBy == nil || repo.reviewSaved.ReviewedAt == nil {
		t.Fatal("expected review fields persisted")
	}
	if memberRepo.lockedReads != 1 {
		t.Fatalf("approval must load the member under a row lock, got %d locked reads", memberRepo.lockedReads)
	}
}

func TestReview_AlreadyDecided(t *testing.T) {
	repo := newFakeRepo()
	entry := &models.ShareLedgerEntry{
		ID:       uuid.New(),
		MemberID: uuid.New(),
		Status:   enums.ReviewStatusApproved,
	}
	repo.entries[entry.ID] = entry
	svc := newTestService(t, repo, &fakeMemberRepo{}, &fakeNotifRepo{}, &fakeMailer{})

	_, err := svc.Review(context.Background(), ReviewInput{
		EntryID:  entry.ID,
		ActorID:  uuid.New(),
		Decision: enums.ReviewDecisionReject,
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestReview_RejectionSkipsReconcile(t *testing.T) {
	member := &models.Member{ID: uuid.New(), Status: enums.MemberStatusActive, SharesOwned: 30}
	repo := newFakeRepo()
	entry := &models.ShareLedgerEntry{
		ID:       uuid.New(),
		MemberID: member.ID,
		Status:   enums.ReviewStatusPending,
	}
	repo.entries[entry.ID] = entry

	memberRepo := &fakeMemberRepo{member: member}
	svc := newTestService(t, repo, memberRepo, &fakeNotifRepo{}, &fakeMailer{})

	result, err := svc.Review(context.Background(), ReviewInput{
		EntryID:  entry.ID,
		ActorID:  uuid.New(),
		Decision: enums.ReviewDecisionReject,
	})
	if err != nil {
		t.Fatalf("unexpected review error: %v", err)
	}

	if result.Entry.Status != enums.ReviewStatusRejected {
		t.Fatalf("expected rejected, got %s", result.Entry.Status)
	}
	if memberRepo.saved {
		t.Fatal("rejection must not touch the member balance")
	}
	if memberRepo.lockedReads != 0 {
		t.Fatal("rejection must not lock the member row")
	}
}

func TestReview_NotFound(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeMemberRepo{}, &fakeNotifRepo{}, &fakeMailer{})

	_, err := svc.Review(context.Background(), ReviewInput{
		EntryID:  uuid.New(),
		ActorID:  uuid.New(),
		Decision: enums.ReviewDecisionApprove,
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBalance_ColorBands(t *testing.T) {
	cases := []struct {
		shares int
		want   string
	}{
		{shares: 0, want: "red"},
		{shares: 20, want: "red"},
		{shares: 21, want: "yellow"},
		{shares: 24, want: "yellow"},
		{shares: 25, want: "green"},
		{shares: 80, want: "green"},
	}

	for _, tc := range cases {
		member := &models.Member{ID: uuid.New(), SharesOwned: tc.shares, Status: enums.MemberStatusActive}
		svc := newTestService(t, newFakeRepo(), &fakeMemberRepo{member: member}, &fakeNotifRepo{}, &fakeMailer{})

		summary, err := svc.Balance(context.Background(), member.ID)
		if err != nil {
			t.Fatalf("unexpected balance error: %v", err)
		}
		if summary.Color != tc.want {
			t.Errorf("shares %d: expected color %s, got %s", tc.shares, tc.want, summary.Color)
		}
		expectedValue := decimal.NewFromInt(int64(tc.shares * 20))
		if !summary.TotalValue.Equal(expectedValue) {
			t.Errorf("shares %d: expected value %s, got %s", tc.shares, expectedValue, summary.TotalValue)
		}
	}
}

func TestRefresh_DeactivatesAndEmails(t *testing.T) {
	member := &models.Member{
		ID:          uuid.New(),
		Email:       "kofi@example.org",
		FirstName:   "Kofi",
		Status:      enums.MemberStatusActive,
		SharesOwned: 24,
	}
	repo := newFakeRepo()
	repo.approvedSum = 18

	memberRepo := &fakeMemberRepo{member: member}
	notifRepo := &fakeNotifRepo{}
	mail := &fakeMailer{}
	svc := newTestService(t, repo, memberRepo, notifRepo, mail)

	summary, err := svc.Refresh(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}

	if summary.SharesOwned != 18 {
		t.Fatalf("expected 18 shares, got %d", summary.SharesOwned)
	}
	if summary.Status != enums.MemberStatusInactive {
		t.Fatalf("expected inactive status, got %s", summary.Status)
	}
	if summary.Color != "red" {
		t.Fatalf("expected red band, got %s", summary.Color)
	}
	if !memberRepo.saved || memberRepo.savedShares != 18 || memberRepo.savedStatus != enums.MemberStatusInactive {
		t.Fatalf("expected member saved with 18/inactive, got %d/%s", memberRepo.savedShares, memberRepo.savedStatus)
	}
	if len(mail.sent) != 1 || mail.sent[0].to != member.Email {
		t.Fatalf("expected one deactivation email to %s, got %v", member.Email, mail.sent)
	}
	if memberRepo.lockedReads != 1 {
		t.Fatalf("refresh must load the member under a row lock, got %d locked reads", memberRepo.lockedReads)
	}
}

func TestRefresh_IdempotentWhenUnchanged(t *testing.T) {
	member := &models.Member{
		ID:          uuid.New(),
		Email:       "zawadi@example.org",
		Status:      enums.MemberStatusActive,
		SharesOwned: 30,
	}
	repo := newFakeRepo()
	repo.approvedSum = 30

	memberRepo := &fakeMemberRepo{member: member}
	mail := &fakeMailer{}
	svc := newTestService(t, repo, memberRepo, &fakeNotifRepo{}, mail)

	for i := 0; i < 2; i++ {
		summary, err := svc.Refresh(context.Background(), member.ID)
		if err != nil {
			t.Fatalf("unexpected refresh error: %v", err)
		}
		if summary.SharesOwned != 30 || summary.Status != enums.MemberStatusActive {
			t.Fatalf("expected 30/active, got %d/%s", summary.SharesOwned, summary.Status)
		}
	}
	if len(mail.sent) != 0 {
		t.Fatal("steady-state refresh must not send email")
	}
}

func TestRefresh_UnknownMember(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeMemberRepo{}, &fakeNotifRepo{}, &fakeMailer{})

	_, err := svc.Refresh(context.Background(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
