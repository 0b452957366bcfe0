package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/duboyz/kumiko-backend/api/responses"
	"github.com/duboyz/kumiko-backend/api/validators"
	"github.com/duboyz/kumiko-backend/internal/payments"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
	"github.com/duboyz/kumiko-backend/pkg/logger"
)

// PaymentConfig exposes the publishable key the storefront needs to mount
// the card element.
func PaymentConfig(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := svc.PublishableKey()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"publishableKey": key})
	}
}

type createIntentRequest struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
}

func PaymentCreateIntent(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createIntentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.CreateIntent(r.Context(), payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, intent)
	}
}

func PaymentConfirm(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID := strings.TrimSpace(chi.URLParam(r, "intentId"))
		if intentID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id required"))
			return
		}

		confirmation, err := svc.Confirm(r.Context(), intentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, confirmation)
	}
}

type onboardingLinkRequest struct {
	RefreshURL string `json:"refreshUrl" validate:"required,url"`
	ReturnURL  string `json:"returnUrl" validate:"required,url"`
}

// PaymentOnboardingLink starts or resumes Stripe Express onboarding for the
// restaurant so it can receive payouts.
func PaymentOnboardingLink(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurantID, err := uuidParam(r, "restaurantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload onboardingLinkRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		link, err := svc.OnboardingLink(r.Context(), restaurantID, payload.RefreshURL, payload.ReturnURL)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, link)
	}
}
