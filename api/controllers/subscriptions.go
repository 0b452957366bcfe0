package controllers

import (
	"net/http"
	"strings"

	"github.com/duboyz/kumiko-backend/api/responses"
	"github.com/duboyz/kumiko-backend/internal/subscriptions"
	"github.com/duboyz/kumiko-backend/pkg/logger"
)

// SubscriptionVerify resolves the post-checkout race: the dashboard lands
// back from Stripe before the webhook has written the subscription row.
// The Stripe checkout session id arrives in the `checkout_session_id` query
// parameter; when it is absent the handler still answers from the database.
func SubscriptionVerify(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurantID, err := uuidParam(r, "restaurantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := strings.TrimSpace(r.URL.Query().Get("checkout_session_id"))

		result, err := svc.VerifyAfterCheckout(r.Context(), restaurantID, sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func SubscriptionDetail(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurantID, err := uuidParam(r, "restaurantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.GetForRestaurant(r.Context(), restaurantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sub)
	}
}
