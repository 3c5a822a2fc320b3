package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harambee-coop/membership-backend/api/responses"
	"github.com/harambee-coop/membership-backend/api/validators"
	"github.com/harambee-coop/membership-backend/internal/claims"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
	"github.com/harambee-coop/membership-backend/pkg/logger"
)

const incidentDateLayout = "2006-01-02"

type claimSubmitRequest struct {
	Type                string          `json:"type" validate:"required"`
	ClaimantName        string          `json:"claimantName" validate:"required"`
	Relationship        string          `json:"relationship" validate:"required"`
	IncidentDate        string          `json:"incidentDate" validate:"required"`
	AmountRequested     decimal.Decimal `json:"amountRequested" validate:"required"`
	Description         string          `json:"description" validate:"required"`
	SupportingDocuments *string         `json:"supportingDocuments"`
}

// ClaimSubmit files a benefit claim for the authenticated member.
func ClaimSubmit(svc claims.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "claims service unavailable"))
			return
		}

		memberID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body claimSubmitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claimType, err := enums.ParseClaimType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid claim type"))
			return
		}

		relationship, err := enums.ParseClaimRelationship(body.Relationship)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid relationship"))
			return
		}

		incidentDate, err := time.Parse(incidentDateLayout, body.IncidentDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "incidentDate must be YYYY-MM-DD"))
			return
		}

		claim, err := svc.Submit(r.Context(), claims.SubmitInput{
			MemberID:            memberID,
			Type:                claimType,
			ClaimantName:        body.ClaimantName,
			Relationship:        relationship,
			IncidentDate:        incidentDate,
			AmountRequested:     body.AmountRequested,
			Description:         body.Description,
			SupportingDocuments: body.SupportingDocuments,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, claim)
	}
}

// ClaimReview decides a pending claim. Admin only.
func ClaimReview(svc claims.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "claims service unavailable"))
			return
		}

		claimID, err := pathUUID(r, "claimId")
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

		claim, err := svc.Review(r.Context(), claims.ReviewInput{
			ClaimID:   claimID,
			ActorID:   adminID,
			Decision:  decision,
			AdminNote: body.AdminNote,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, claim)
	}
}

// ClaimList pages claims. Members see their own; admins see everyone's.
func ClaimList(svc claims.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "claims service unavailable"))
			return
		}

		limit, offset, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := claims.ListParams{
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
