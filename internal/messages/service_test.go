package messages

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

type fakeRepo struct {
	messages map[uuid.UUID]*models.Message
	contact  map[uuid.UUID]*models.ContactMessage
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		messages: map[uuid.UUID]*models.Message{},
		contact:  map[uuid.UUID]*models.ContactMessage{},
	}
}

func (f *fakeRepo) CreateMessage(_ context.Context, message *models.Message) error {
	f.messages[message.ID] = message
	return nil
}

func (f *fakeRepo) GetMessage(_ context.Context, id uuid.UUID) (*models.Message, error) {
	message, ok := f.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return message, nil
}

func (f *fakeRepo) ListInbox(_ context.Context, recipientID uuid.UUID, _, _ int) ([]models.Message, int64, error) {
	var rows []models.Message
	for _, m := range f.messages {
		if m.RecipientID == recipientID {
			rows = append(rows, *m)
		}
	}
	return rows, int64(len(rows)), nil
}

func (f *fakeRepo) ListSent(_ context.Context, senderID uuid.UUID, _, _ int) ([]models.Message, int64, error) {
	var rows []models.Message
	for _, m := range f.messages {
		if m.SenderID == senderID {
			rows = append(rows, *m)
		}
	}
	return rows, int64(len(rows)), nil
}

func (f *fakeRepo) MarkMessageRead(_ context.Context, recipientID, messageID uuid.UUID, now time.Time) (bool, error) {
	message, ok := f.messages[messageID]
	if !ok || message.RecipientID != recipientID || message.ReadAt != nil {
		return false, nil
	}
	message.ReadAt = &now
	return true, nil
}

func (f *fakeRepo) CountUnread(_ context.Context, recipientID uuid.UUID) (int64, error) {
	var total int64
	for _, m := range f.messages {
		if m.RecipientID == recipientID && m.ReadAt == nil {
			total++
		}
	}
	return total, nil
}

func (f *fakeRepo) CreateContact(_ context.Context, message *models.ContactMessage) error {
	f.contact[message.ID] = message
	return nil
}

func (f *fakeRepo) ListContact(_ context.Context, unreadOnly bool, _, _ int) ([]models.ContactMessage, int64, error) {
	var rows []models.ContactMessage
	for _, m := range f.contact {
		if unreadOnly && m.ReadAt != nil {
			continue
		}
		rows = append(rows, *m)
	}
	return rows, int64(len(rows)), nil
}

func (f *fakeRepo) MarkContactRead(_ context.Context, id uuid.UUID, now time.Time) (bool, error) {
	message, ok := f.contact[id]
	if !ok || message.ReadAt != nil {
		return false, nil
	}
	message.ReadAt = &now
	return true, nil
}

type fakeMemberRepo struct {
	known map[uuid.UUID]bool
}

func (f *fakeMemberRepo) WithTx(tx *gorm.DB) members.Repository { return f }

func (f *fakeMemberRepo) Create(_ context.Context, _ *models.Member) error { return nil }

func (f *fakeMemberRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Member, error) {
	if !f.known[id] {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Member{ID: id}, nil
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

func newTestService(t *testing.T) (Service, *fakeRepo, uuid.UUID, uuid.UUID) {
	t.Helper()
	repo := newFakeRepo()
	sender, recipient := uuid.New(), uuid.New()
	svc, err := NewService(repo, &fakeMemberRepo{known: map[uuid.UUID]bool{sender: true, recipient: true}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, sender, recipient
}

func TestSendAndMarkRead(t *testing.T) {
	svc, _, sender, recipient := newTestService(t)
	ctx := context.Background()

	message, err := svc.Send(ctx, SendInput{
		SenderID:    sender,
		RecipientID: recipient,
		Subject:     "Dues reminder",
		Content:     "Please settle outstanding dues.",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	unread, err := svc.UnreadCount(ctx, recipient)
	if err != nil || unread != 1 {
		t.Fatalf("unread = %d err = %v, want 1", unread, err)
	}

	if err := svc.MarkRead(ctx, recipient, message.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	unread, err = svc.UnreadCount(ctx, recipient)
	if err != nil || unread != 0 {
		t.Fatalf("unread after read = %d err = %v, want 0", unread, err)
	}

	// Marking an already-read message is a no-op, not an error.
	if err := svc.MarkRead(ctx, recipient, message.ID); err != nil {
		t.Fatalf("MarkRead twice: %v", err)
	}

	// The sender cannot mark someone else's copy read.
	err = svc.MarkRead(ctx, sender, message.ID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for non-recipient, got %v", err)
	}
}

func TestSendValidation(t *testing.T) {
	svc, _, sender, recipient := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input SendInput
		code  pkgerrors.Code
	}{
		{"self message", SendInput{SenderID: sender, RecipientID: sender, Subject: "a", Content: "b"}, pkgerrors.CodeValidation},
		{"missing subject", SendInput{SenderID: sender, RecipientID: recipient, Content: "b"}, pkgerrors.CodeValidation},
		{"missing content", SendInput{SenderID: sender, RecipientID: recipient, Subject: "a"}, pkgerrors.CodeValidation},
		{"unknown recipient", SendInput{SenderID: sender, RecipientID: uuid.New(), Subject: "a", Content: "b"}, pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Send(ctx, tc.input)
			if pkgerrors.As(err).Code() != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestContactFlow(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	submitted, err := svc.SubmitContact(ctx, ContactInput{
		Name:    "Visitor",
		Email:   "Visitor@Example.Org",
		Subject: "Joining",
		Message: "How do I become a member?",
	})
	if err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}
	if submitted.Email != "visitor@example.org" {
		t.Fatalf("email not normalized: %q", submitted.Email)
	}

	page, err := svc.ListContact(ctx, true, 20, 0)
	if err != nil || page.Total != 1 {
		t.Fatalf("unread contact total = %d err = %v, want 1", page.Total, err)
	}

	if err := svc.MarkContactRead(ctx, submitted.ID); err != nil {
		t.Fatalf("MarkContactRead: %v", err)
	}

	page, err = svc.ListContact(ctx, true, 20, 0)
	if err != nil || page.Total != 0 {
		t.Fatalf("unread contact total after read = %d err = %v, want 0", page.Total, err)
	}
}
