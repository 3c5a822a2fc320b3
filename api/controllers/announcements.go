package controllers

import (
	"net/http"
	"strings"

	"github.com/harambee-coop/membership-backend/api/responses"
	"github.com/harambee-coop/membership-backend/api/validators"
	"github.com/harambee-coop/membership-backend/internal/announcements"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
	"github.com/harambee-coop/membership-backend/pkg/logger"
)

type announcementCreateRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	Type    string `json:"type"`
}

type announcementUpdateRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	IsActive *bool   `json:"isActive"`
}

// AnnouncementCreate publishes an announcement. Admin only.
func AnnouncementCreate(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "announcements service unavailable"))
			return
		}

		adminID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body announcementCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var annType enums.AnnouncementType
		if body.Type != "" {
			annType, err = enums.ParseAnnouncementType(body.Type)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid announcement type"))
				return
			}
		}

		announcement, err := svc.Create(r.Context(), announcements.CreateInput{
			Title:     body.Title,
			Content:   body.Content,
			Type:      annType,
			CreatedBy: adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, announcement)
	}
}

// AnnouncementDetail returns one announcement.
func AnnouncementDetail(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "announcements service unavailable"))
			return
		}

		id, err := pathUUID(r, "announcementId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		announcement, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, announcement)
	}
}

// AnnouncementUpdate edits an announcement. Admin only.
func AnnouncementUpdate(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "announcements service unavailable"))
			return
		}

		id, err := pathUUID(r, "announcementId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body announcementUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		announcement, err := svc.Update(r.Context(), id, announcements.UpdateInput{
			Title:    body.Title,
			Content:  body.Content,
			IsActive: body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, announcement)
	}
}

// AnnouncementDelete removes an announcement. Admin only.
func AnnouncementDelete(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "announcements service unavailable"))
			return
		}

		id, err := pathUUID(r, "announcementId")
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

// AnnouncementList pages announcements, newest first.
func AnnouncementList(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "announcements service unavailable"))
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

		result, err := svc.List(r.Context(), announcements.ListParams{
			ActiveOnly: activeOnly,
			Type:       strings.TrimSpace(r.URL.Query().Get("type")),
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
