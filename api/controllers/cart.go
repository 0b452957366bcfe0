package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/duboyz/kumiko-backend/api/middleware"
	"github.com/duboyz/kumiko-backend/api/responses"
	"github.com/duboyz/kumiko-backend/api/validators"
	"github.com/duboyz/kumiko-backend/internal/cart"
	"github.com/duboyz/kumiko-backend/pkg/enums"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
	"github.com/duboyz/kumiko-backend/pkg/logger"
)

type cartResponse struct {
	*cart.Session
	TotalAmount string `json:"totalAmount"`
	ItemCount   int    `json:"itemCount"`
}

func newCartResponse(session *cart.Session) cartResponse {
	return cartResponse{
		Session:     session,
		TotalAmount: session.TotalAmount().StringFixed(2),
		ItemCount:   session.ItemCount(),
	}
}

func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(session))
	}
}

type cartAddItemRequest struct {
	MenuItemID         uuid.UUID  `json:"menuItemId" validate:"required"`
	MenuItemName       string     `json:"menuItemName" validate:"required"`
	Price              string     `json:"price" validate:"required"`
	MenuItemOptionID   *uuid.UUID `json:"menuItemOptionId,omitempty"`
	MenuItemOptionName *string    `json:"menuItemOptionName,omitempty"`
}

func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartAddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.AddItem(r.Context(), middleware.SessionIDFromContext(r.Context()), cart.AddItemInput{
			MenuItemID:         payload.MenuItemID,
			MenuItemName:       payload.MenuItemName,
			Price:              payload.Price,
			MenuItemOptionID:   payload.MenuItemOptionID,
			MenuItemOptionName: payload.MenuItemOptionName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(session))
	}
}

type cartQuantityRequest struct {
	Delta *int `json:"delta" validate:"required"`
}

func CartUpdateQuantity(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, err := uuidParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.UpdateQuantity(r.Context(), middleware.SessionIDFromContext(r.Context()), lineID, *payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(session))
	}
}

func CartRemoveLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, err := uuidParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.RemoveItem(r.Context(), middleware.SessionIDFromContext(r.Context()), lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(session))
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.ClearItems(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(session))
	}
}

type cartCustomerFieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

func CartSetCustomerField(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartCustomerFieldRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		field, ok := cart.ParseCustomerField(payload.Field)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown customer field").WithDetails(map[string]any{"field": payload.Field}))
			return
		}

		session, err := svc.SetCustomerField(r.Context(), middleware.SessionIDFromContext(r.Context()), field, payload.Value)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(session))
	}
}

func CartResetCustomer(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.ResetCustomerInfo(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(session))
	}
}

type cartContextRequest struct {
	RestaurantID uuid.UUID `json:"restaurantId" validate:"required"`
	MenuID       uuid.UUID `json:"menuId" validate:"required"`
	Currency     string    `json:"currency" validate:"required"`
	DiscardItems bool      `json:"discardItems"`
}

func CartSetContext(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartContextRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		currency, err := enums.ParseCurrency(payload.Currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
			return
		}

		session, err := svc.SetRestaurantContext(r.Context(), middleware.SessionIDFromContext(r.Context()), cart.ContextInput{
			RestaurantID: payload.RestaurantID,
			MenuID:       payload.MenuID,
			Currency:     currency,
			DiscardItems: payload.DiscardItems,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(session))
	}
}

func CartDiscard(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Discard(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").WithDetails(map[string]any{"param": name})
	}
	return id, nil
}
