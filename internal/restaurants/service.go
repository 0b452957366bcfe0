package restaurants

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/duboyz/kumiko-backend/pkg/db/models"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
	"github.com/duboyz/kumiko-backend/pkg/hours"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type restaurantRepository interface {
	Create(ctx context.Context, restaurant *models.Restaurant) (*models.Restaurant, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	FindBySlug(ctx context.Context, slug string) (*models.Restaurant, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Restaurant, error)
	Update(ctx context.Context, restaurant *models.Restaurant) error
}

// Service exposes restaurant operations.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateRestaurantInput) (*RestaurantDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*RestaurantDTO, error)
	GetBySlug(ctx context.Context, slug string) (*models.Restaurant, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]RestaurantDTO, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input UpdateRestaurantInput) (*RestaurantDTO, error)
	PickupWindow(ctx context.Context, restaurantID uuid.UUID, date time.Time) (*PickupWindowDTO, error)
}

// Options tunes the pickup-window evaluation.
type Options struct {
	PreparationBuffer time.Duration
	LookaheadDays     int
	Now               func() time.Time
}

type service struct {
	repo      restaurantRepository
	buffer    time.Duration
	lookahead int
	now       func() time.Time
}

// NewService builds a restaurant service with the provided repository.
func NewService(repo restaurantRepository, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("restaurant repository required")
	}
	buffer := opts.PreparationBuffer
	if buffer <= 0 {
		buffer = hours.DefaultPreparationBuffer
	}
	lookahead := opts.LookaheadDays
	if lookahead <= 0 {
		lookahead = hours.DefaultLookaheadDays
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, buffer: buffer, lookahead: lookahead, now: now}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateRestaurantInput) (*RestaurantDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !slugPattern.MatchString(input.Slug) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits and hyphens")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}
	if input.BusinessHours != nil {
		if err := hours.Validate(*input.BusinessHours); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid business hours")
		}
	}

	restaurant := &models.Restaurant{
		OwnerID:       ownerID,
		Name:          strings.TrimSpace(input.Name),
		Slug:          input.Slug,
		Currency:      input.Currency,
		BusinessHours: input.BusinessHours,
	}
	created, err := s.repo.Create(ctx, restaurant)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create restaurant")
	}
	return FromModel(created), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*RestaurantDTO, error) {
	restaurant, err := s.loadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(restaurant), nil
}

// GetBySlug returns the full model including the menu tree; the controller
// shapes the storefront payload from it.
func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	restaurant, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	return restaurant, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]RestaurantDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	restaurants, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list restaurants")
	}
	out := make([]RestaurantDTO, 0, len(restaurants))
	for i := range restaurants {
		out = append(out, *FromModel(&restaurants[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, ownerID, id uuid.UUID, input UpdateRestaurantInput) (*RestaurantDTO, error) {
	restaurant, err := s.loadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if restaurant.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "restaurant belongs to another owner")
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		restaurant.Name = strings.TrimSpace(*input.Name)
	}
	if input.Slug != nil {
		if !slugPattern.MatchString(*input.Slug) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits and hyphens")
		}
		restaurant.Slug = *input.Slug
	}
	if input.Currency != nil {
		if !input.Currency.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
		}
		restaurant.Currency = *input.Currency
	}
	if input.BusinessHours != nil {
		// The read side tolerates malformed hours; the write side does not.
		if err := hours.Validate(*input.BusinessHours); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid business hours")
		}
		restaurant.BusinessHours = input.BusinessHours
	}

	if err := s.repo.Update(ctx, restaurant); err != nil {
		if isUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update restaurant")
	}
	return FromModel(restaurant), nil
}

// PickupWindow resolves the hours evaluator against a restaurant's stored
// schedule for one candidate date.
func (s *service) PickupWindow(ctx context.Context, restaurantID uuid.UUID, date time.Time) (*PickupWindowDTO, error) {
	restaurant, err := s.loadByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	var sched hours.WeekSchedule
	if restaurant.BusinessHours != nil {
		sched, _ = hours.Parse(*restaurant.BusinessHours)
	}

	now := s.now()
	dto := &PickupWindowDTO{
		Date:      date.Format("2006-01-02"),
		Available: sched.DateAvailable(date),
		Disabled:  sched.ShouldDisableDate(date),
		Dates:     []string{},
	}
	if min, ok := sched.MinTime(date, now, s.buffer); ok {
		dto.MinTime = &min
	}
	if max, ok := sched.MaxTime(date); ok {
		dto.MaxTime = &max
	}
	if minDate, ok := sched.MinDate(now); ok {
		formatted := minDate.Format("2006-01-02")
		dto.MinDate = &formatted
	}
	for _, open := range sched.AvailableDates(now, s.lookahead) {
		dto.Dates = append(dto.Dates, open.Format("2006-01-02"))
	}
	return dto, nil
}

func (s *service) loadByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	restaurant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	return restaurant, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
