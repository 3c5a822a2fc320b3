package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/harambee-coop/membership-backend/api/responses"
	"github.com/harambee-coop/membership-backend/api/validators"
	"github.com/harambee-coop/membership-backend/internal/applications"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
	"github.com/harambee-coop/membership-backend/pkg/logger"
)

type applicationSubmitRequest struct {
	Type          string   `json:"type" validate:"required"`
	FirstName     string   `json:"firstName" validate:"required"`
	MiddleName    *string  `json:"middleName"`
	LastName      string   `json:"lastName" validate:"required"`
	Email         string   `json:"email" validate:"required,email"`
	Address       string   `json:"address" validate:"required"`
	Phone         string   `json:"phone" validate:"required"`
	IDDocument    *string  `json:"idDocument"`
	Spouse        *string  `json:"spouse"`
	SpousePhone   *string  `json:"spousePhone"`
	AuthorizedRep *string  `json:"authorizedRep"`
	Children      []string `json:"children"`
	Parents       []string `json:"parents"`
	Siblings      []string `json:"siblings"`
}

// ApplicationSubmit files a membership application for the authenticated
// member.
func ApplicationSubmit(svc applications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "applications service unavailable"))
			return
		}

		memberID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body applicationSubmitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appType, err := enums.ParseApplicationType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid application type"))
			return
		}

		application, err := svc.Submit(r.Context(), applications.SubmitInput{
			MemberID:      memberID,
			Type:          appType,
			FirstName:     body.FirstName,
			MiddleName:    body.MiddleName,
			LastName:      body.LastName,
			Email:         body.Email,
			Address:       body.Address,
			Phone:         body.Phone,
			IDDocument:    body.IDDocument,
			Spouse:        body.Spouse,
			SpousePhone:   body.SpousePhone,
			AuthorizedRep: body.AuthorizedRep,
			Children:      body.Children,
			Parents:       body.Parents,
			Siblings:      body.Siblings,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, application)
	}
}

// ApplicationReview decides a pending application. Admin only.
func ApplicationReview(svc applications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "applications service unavailable"))
			return
		}

		applicationID, err := pathUUID(r, "applicationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		adminID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reviewRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := enums.ParseReviewDecision(body.Decision)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decision"))
			return
		}

		application, err := svc.Review(r.Context(), applications.ReviewInput{
			ApplicationID: applicationID,
			ActorID:       adminID,
			Decision:      decision,
			AdminNote:     body.AdminNote,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, application)
	}
}

// ApplicationList pages applications. Members see their own; admins see
// everyone's.
func ApplicationList(svc applications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "applications service unavailable"))
			return
		}

		limit, offset, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := applications.ListParams{
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:  limit,
			Offset: offset,
		}

		if isAdmin(r) {
			if raw := strings.TrimSpace(r.URL.Query().Get("memberId")); raw != "" {
				mid, err := uuid.Parse(raw)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid memberId"))
					return
				}
				params.MemberID = &mid
			}
		} else {
			memberID, err := actorID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			params.MemberID = &memberID
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
