package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/duboyz/kumiko-backend/api/middleware"
	"github.com/duboyz/kumiko-backend/api/responses"
	"github.com/duboyz/kumiko-backend/api/validators"
	"github.com/duboyz/kumiko-backend/internal/restaurants"
	"github.com/duboyz/kumiko-backend/pkg/db/models"
	"github.com/duboyz/kumiko-backend/pkg/enums"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
	"github.com/duboyz/kumiko-backend/pkg/logger"
)

func ownerIDFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.OwnerIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid owner id")
	}
	return id, nil
}

type createRestaurantRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=120"`
	Slug          string  `json:"slug" validate:"required,min=1,max=80"`
	Currency      string  `json:"currency" validate:"required"`
	BusinessHours *string `json:"businessHours,omitempty"`
}

func RestaurantCreate(svc restaurants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createRestaurantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		currency, err := enums.ParseCurrency(payload.Currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
			return
		}

		dto, err := svc.Create(r.Context(), ownerID, restaurants.CreateRestaurantInput{
			Name:          payload.Name,
			Slug:          payload.Slug,
			Currency:      currency,
			BusinessHours: payload.BusinessHours,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func RestaurantList(svc restaurants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos, err := svc.ListByOwner(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dtos)
	}
}

func RestaurantDetail(svc restaurants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "restaurantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type updateRestaurantRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Slug          *string `json:"slug,omitempty" validate:"omitempty,min=1,max=80"`
	Currency      *string `json:"currency,omitempty"`
	BusinessHours *string `json:"businessHours,omitempty"`
}

func RestaurantUpdate(svc restaurants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := uuidParam(r, "restaurantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateRestaurantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := restaurants.UpdateRestaurantInput{
			Name:          payload.Name,
			Slug:          payload.Slug,
			BusinessHours: payload.BusinessHours,
		}
		if payload.Currency != nil {
			currency, err := enums.ParseCurrency(*payload.Currency)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
				return
			}
			input.Currency = &currency
		}

		dto, err := svc.Update(r.Context(), ownerID, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// StorefrontBySlug serves the public menu tree for a restaurant's storefront.
func StorefrontBySlug(svc restaurants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}

		restaurant, err := svc.GetBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newStorefrontResponse(restaurant))
	}
}

// PickupWindow serves the storefront's date/time picker constraints for one
// candidate pickup date. Date defaults to today when absent.
func PickupWindow(svc restaurants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "restaurantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date := time.Now()
		if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD").WithDetails(map[string]any{"field": "date"}))
				return
			}
			date = parsed
		}

		dto, err := svc.PickupWindow(r.Context(), id, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type storefrontResponse struct {
	ID       uuid.UUID        `json:"id"`
	Name     string           `json:"name"`
	Slug     string           `json:"slug"`
	Currency enums.Currency   `json:"currency"`
	Menus    []storefrontMenu `json:"menus"`
	Hours    *string          `json:"businessHours,omitempty"`
}

type storefrontMenu struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Categories  []storefrontCategory `json:"categories"`
}

type storefrontCategory struct {
	ID    uuid.UUID        `json:"id"`
	Name  string           `json:"name"`
	Items []storefrontItem `json:"items"`
}

type storefrontItem struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Price       string             `json:"price"`
	Allergens   []string           `json:"allergens,omitempty"`
	IsAvailable bool               `json:"isAvailable"`
	Options     []storefrontOption `json:"options,omitempty"`
}

type storefrontOption struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price *string   `json:"price,omitempty"`
}

func newStorefrontResponse(restaurant *models.Restaurant) storefrontResponse {
	resp := storefrontResponse{
		ID:       restaurant.ID,
		Name:     restaurant.Name,
		Slug:     restaurant.Slug,
		Currency: restaurant.Currency,
		Hours:    restaurant.BusinessHours,
		Menus:    make([]storefrontMenu, 0, len(restaurant.Menus)),
	}
	for _, menu := range restaurant.Menus {
		m := storefrontMenu{
			ID:          menu.ID,
			Name:        menu.Name,
			Description: menu.Description,
			Categories:  make([]storefrontCategory, 0, len(menu.Categories)),
		}
		for _, category := range menu.Categories {
			c := storefrontCategory{
				ID:    category.ID,
				Name:  category.Name,
				Items: make([]storefrontItem, 0, len(category.Items)),
			}
			for _, item := range category.Items {
				i := storefrontItem{
					ID:          item.ID,
					Name:        item.Name,
					Description: item.Description,
					Price:       item.Price,
					Allergens:   item.Allergens,
					IsAvailable: item.IsAvailable,
				}
				for _, option := range item.Options {
					i.Options = append(i.Options, storefrontOption{
						ID:    option.ID,
						Name:  option.Name,
						Price: option.Price,
					})
				}
				c.Items = append(c.Items, i)
			}
			m.Categories = append(m.Categories, c)
		}
		resp.Menus = append(resp.Menus, m)
	}
	return resp
}
