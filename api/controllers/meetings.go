package controllers

import (
	"net/http"
	"time"

	"github.com/harambee-coop/membership-backend/api/responses"
	"github.com/harambee-coop/membership-backend/api/validators"
	"github.com/harambee-coop/membership-backend/internal/meetings"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
	"github.com/harambee-coop/membership-backend/pkg/logger"
)

type meetingCreateRequest struct {
	Title        string    `json:"title" validate:"required"`
	Description  *string   `json:"description"`
	StartsAt     time.Time `json:"startsAt" validate:"required"`
	Location     string    `json:"location" validate:"required"`
	Type         string    `json:"type"`
	MaxAttendees *int      `json:"maxAttendees"`
}

type meetingUpdateRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	StartsAt     *time.Time `json:"startsAt"`
	Location     *string    `json:"location"`
	MaxAttendees *int       `json:"maxAttendees"`
	IsActive     *bool      `json:"isActive"`
}

// MeetingCreate schedules a meeting. Admin only.
func MeetingCreate(svc meetings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "meetings service unavailable"))
			return
		}

		adminID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body meetingCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var meetingType enums.MeetingType
		if body.Type != "" {
			meetingType, err = enums.ParseMeetingType(body.Type)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid meeting type"))
				return
			}
		}

		meeting, err := svc.Create(r.Context(), meetings.CreateInput{
			Title:        body.Title,
			Description:  body.Description,
			StartsAt:     body.StartsAt,
			Location:     body.Location,
			Type:         meetingType,
			MaxAttendees: body.MaxAttendees,
			CreatedBy:    adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, meeting)
	}
}

// MeetingDetail returns one meeting.
func MeetingDetail(svc meetings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "meetings service unavailable"))
			return
		}

		id, err := pathUUID(r, "meetingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meeting, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, meeting)
	}
}

// MeetingUpdate edits a meeting. Admin only.
func MeetingUpdate(svc meetings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "meetings service unavailable"))
			return
		}

		id, err := pathUUID(r, "meetingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body meetingUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meeting, err := svc.Update(r.Context(), id, meetings.UpdateInput{
			Title:        body.Title,
			Description:  body.Description,
			StartsAt:     body.StartsAt,
			Location:     body.Location,
			MaxAttendees: body.MaxAttendees,
			IsActive:     body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, meeting)
	}
}

// MeetingDelete removes a meeting. Admin only.
func MeetingDelete(svc meetings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "meetings service unavailable"))
			return
		}

		id, err := pathUUID(r, "meetingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// MeetingList pages meetings, soonest first.
func MeetingList(svc meetings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "meetings service unavailable"))
			return
		}

		limit, offset, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		activeOnly, err := validators.ParseQueryBool(r, "activeOnly")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		upcomingOnly, err := validators.ParseQueryBool(r, "upcomingOnly")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), meetings.ListParams{
			ActiveOnly:   activeOnly,
			UpcomingOnly: upcomingOnly,
			Limit:        limit,
			Offset:       offset,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
