package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/duboyz/kumiko-backend/pkg/db/models"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
	"github.com/duboyz/kumiko-backend/pkg/logger"
)

const (
	defaultMaxAttempts = 2
	defaultRetryDelay  = 2 * time.Second
	cacheScope         = "subscription"
)

type subscriptionRepository interface {
	FindLatestByRestaurant(ctx context.Context, restaurantID uuid.UUID) (*models.Subscription, error)
	FindByCheckoutSession(ctx context.Context, sessionID string) (*models.Subscription, error)
}

type cache interface {
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

// VerificationResult is the terminal state of a post-checkout check. The
// flow always resolves; a missing subscription is an answer, not an error.
type VerificationResult struct {
	Found        bool                 `json:"found"`
	Active       bool                 `json:"active"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
}

// Service verifies subscription state after Stripe Checkout returns.
type Service interface {
	VerifyAfterCheckout(ctx context.Context, restaurantID uuid.UUID, checkoutSessionID string) (*VerificationResult, error)
	GetForRestaurant(ctx context.Context, restaurantID uuid.UUID) (*models.Subscription, error)
}

// Options bounds the verification retry policy.
type Options struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

type service struct {
	repo        subscriptionRepository
	cache       cache
	logg        *logger.Logger
	maxAttempts int
	retryDelay  time.Duration
}

// NewService builds a verification service. The cache may be nil when no
// Redis is wired, e.g. in tests.
func NewService(repo subscriptionRepository, cacheStore cache, logg *logger.Logger, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	return &service{
		repo:        repo,
		cache:       cacheStore,
		logg:        logg,
		maxAttempts: attempts,
		retryDelay:  delay,
	}, nil
}

// VerifyAfterCheckout invalidates the cached record, re-reads the database
// and, when the webhook has not landed yet, polls the checkout-session
// lookup under the bounded policy.
func (s *service) VerifyAfterCheckout(ctx context.Context, restaurantID uuid.UUID, checkoutSessionID string) (*VerificationResult, error) {
	if restaurantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}

	s.invalidate(ctx, restaurantID)

	sub, err := s.repo.FindLatestByRestaurant(ctx, restaurantID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if sub != nil {
		return resultFor(sub), nil
	}

	if strings.TrimSpace(checkoutSessionID) == "" {
		return &VerificationResult{}, nil
	}

	backoff := retry.WithMaxRetries(uint64(s.maxAttempts), retry.NewConstant(s.retryDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		found, lookupErr := s.repo.FindByCheckoutSession(ctx, checkoutSessionID)
		if lookupErr != nil {
			if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
				return retry.RetryableError(lookupErr)
			}
			return lookupErr
		}
		sub = found
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Retries exhausted without the webhook landing. Still resolved.
			if s.logg != nil {
				s.logg.Warn(ctx, "subscription not materialized after checkout retries")
			}
			return &VerificationResult{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify subscription")
	}
	return resultFor(sub), nil
}

func (s *service) GetForRestaurant(ctx context.Context, restaurantID uuid.UUID) (*models.Subscription, error) {
	if restaurantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	sub, err := s.repo.FindLatestByRestaurant(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	return sub, nil
}

func (s *service) invalidate(ctx context.Context, restaurantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	key := s.cache.CacheKey(cacheScope, restaurantID.String())
	if err := s.cache.Del(ctx, key); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "invalidate subscription cache: "+err.Error())
	}
}

func resultFor(sub *models.Subscription) *VerificationResult {
	return &VerificationResult{
		Found:        true,
		Active:       sub.Status.IsActive(),
		Subscription: sub,
	}
}
