package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/harambee-coop/membership-backend/api/middleware"
	"github.com/harambee-coop/membership-backend/api/responses"
	"github.com/harambee-coop/membership-backend/api/validators"
	"github.com/harambee-coop/membership-backend/internal/messages"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
	"github.com/harambee-coop/membership-backend/pkg/logger"
)

type contactSubmitRequest struct {
	Name    string  `json:"name" validate:"required"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone"`
	Subject string  `json:"subject" validate:"required"`
	Message string  `json:"message" validate:"required"`
}

// ContactSubmit accepts the public contact form. Works with or without a
// logged-in member on the request.
func ContactSubmit(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "messages service unavailable"))
			return
		}

		var body contactSubmitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := messages.ContactInput{
			Name:    body.Name,
			Email:   body.Email,
			Phone:   body.Phone,
			Subject: body.Subject,
			Message: body.Message,
		}

		if raw := middleware.MemberIDFromContext(r.Context()); raw != "" {
			if mid, err := uuid.Parse(raw); err == nil {
				input.MemberID = &mid
			}
		}

		contact, err := svc.SubmitContact(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, contact)
	}
}

// ContactList pages contact form submissions. Admin only.
func ContactList(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "messages service unavailable"))
			return
		}

		limit, offset, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		unreadOnly, err := validators.ParseQueryBool(r, "unreadOnly")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListContact(r.Context(), unreadOnly, limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ContactMarkRead marks a contact submission as handled. Admin only.
func ContactMarkRead(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "messages service unavailable"))
			return
		}

		contactID, err := pathUUID(r, "contactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkContactRead(r.Context(), contactID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"read": true})
	}
}
