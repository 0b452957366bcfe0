package controllers

import (
	"net/http"

	"github.com/duboyz/kumiko-backend/api/middleware"
	"github.com/duboyz/kumiko-backend/api/responses"
	checkoutsvc "github.com/duboyz/kumiko-backend/internal/checkout"
	"github.com/duboyz/kumiko-backend/pkg/logger"
)

// Checkout submits the storefront's cart session as an order. The session
// is the only input; everything the order needs already lives in it.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.Submit(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
