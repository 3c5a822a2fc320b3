package meetings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
)

type fakeRepo struct {
	meetings map[uuid.UUID]*models.Meeting
	lastList ListFilter
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{meetings: map[uuid.UUID]*models.Meeting{}}
}

func (f *fakeRepo) Create(ctx context.Context, meeting *models.Meeting) error {
	f.meetings[meeting.ID] = meeting
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error) {
	meeting, ok := f.meetings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *meeting
	return &copied, nil
}

func (f *fakeRepo) List(ctx context.Context, params ListFilter) ([]models.Meeting, int64, error) {
	f.lastList = params
	var rows []models.Meeting
	for _, meeting := range f.meetings {
		if params.ActiveOnly && !meeting.IsActive {
			continue
		}
		if !params.UpcomingAfter.IsZero() && meeting.StartsAt.Before(params.UpcomingAfter) {
			continue
		}
		rows = append(rows, *meeting)
	}
	return rows, int64(len(rows)), nil
}

func (f *fakeRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	meeting, ok := f.meetings[id]
	if !ok {
		return nil
	}
	if v, ok := fields["title"]; ok {
		meeting.Title = v.(string)
	}
	if v, ok := fields["location"]; ok {
		meeting.Location = v.(string)
	}
	if v, ok := fields["starts_at"]; ok {
		meeting.StartsAt = v.(time.Time)
	}
	if v, ok := fields["is_active"]; ok {
		meeting.IsActive = v.(bool)
	}
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := f.meetings[id]; !ok {
		return false, nil
	}
	delete(f.meetings, id)
	return true, nil
}

func newTestService(t *testing.T) (Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func TestCreateDefaultsToGeneralActive(t *testing.T) {
	svc, repo := newTestService(t)

	meeting, err := svc.Create(context.Background(), CreateInput{
		Title:     "  Annual General Meeting ",
		StartsAt:  time.Now().Add(48 * time.Hour),
		Location:  "Community Hall",
		CreatedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if meeting.Type != enums.MeetingTypeGeneral {
		t.Fatalf("expected general type, got %s", meeting.Type)
	}
	if !meeting.IsActive {
		t.Fatal("new meetings should start active")
	}
	if meeting.Title != "Annual General Meeting" {
		t.Fatalf("title not trimmed: %q", meeting.Title)
	}
	if _, ok := repo.meetings[meeting.ID]; !ok {
		t.Fatal("meeting not persisted")
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	valid := func() CreateInput {
		return CreateInput{
			Title:     "Budget Review",
			StartsAt:  time.Now().Add(time.Hour),
			Location:  "Hall B",
			CreatedBy: uuid.New(),
		}
	}

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing title", func(in *CreateInput) { in.Title = "  " }},
		{"missing location", func(in *CreateInput) { in.Location = "" }},
		{"zero start", func(in *CreateInput) { in.StartsAt = time.Time{} }},
		{"missing creator", func(in *CreateInput) { in.CreatedBy = uuid.Nil }},
		{"bad type", func(in *CreateInput) { in.Type = enums.MeetingType("picnic") }},
		{"zero attendees", func(in *CreateInput) { zero := 0; in.MaxAttendees = &zero }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid()
			tc.mutate(&input)
			_, err := svc.Create(context.Background(), input)
			if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	svc, _ := newTestService(t)

	meeting, err := svc.Create(context.Background(), CreateInput{
		Title:     "Budget Review",
		StartsAt:  time.Now().Add(time.Hour),
		Location:  "Hall B",
		CreatedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "Budget Review (rescheduled)"
	inactive := false
	updated, err := svc.Update(context.Background(), meeting.ID, UpdateInput{
		Title:    &title,
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("title not applied: %q", updated.Title)
	}
	if updated.IsActive {
		t.Fatal("is_active not applied")
	}
	if updated.Location != "Hall B" {
		t.Fatalf("location should be untouched, got %q", updated.Location)
	}
}

func TestUpdateRejectsBlankTitle(t *testing.T) {
	svc, _ := newTestService(t)
	blank := " "
	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{Title: &blank})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteUnknownMeeting(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Delete(context.Background(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListUpcomingOnlySetsCutoff(t *testing.T) {
	svc, repo := newTestService(t)

	if _, err := svc.List(context.Background(), ListParams{UpcomingOnly: true, ActiveOnly: true}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastList.UpcomingAfter.IsZero() {
		t.Fatal("upcoming filter should set a cutoff")
	}
	if !repo.lastList.ActiveOnly {
		t.Fatal("active filter should carry through")
	}
}
