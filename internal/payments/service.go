package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/duboyz/kumiko-backend/pkg/db/models"
	"github.com/duboyz/kumiko-backend/pkg/enums"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
)

type orderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	AttachPaymentIntent(ctx context.Context, id uuid.UUID, intentID, clientSecret string) error
}

type restaurantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	SetStripeAccount(ctx context.Context, id uuid.UUID, accountID string) error
}

type keyProvider interface {
	PublishableKey() string
}

// IntentDTO is what the storefront payment form needs to mount Stripe
// elements.
type IntentDTO struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
}

// ConfirmationDTO is the terminal result of one confirmation attempt.
type ConfirmationDTO struct {
	State   enums.PaymentState `json:"state"`
	Message string             `json:"message,omitempty"`
}

// OnboardingLinkDTO carries a one-time Stripe Connect onboarding URL.
type OnboardingLinkDTO struct {
	AccountID string `json:"account_id"`
	URL       string `json:"url"`
}

// Service drives payment intents and Connect onboarding.
type Service interface {
	CreateIntent(ctx context.Context, orderID uuid.UUID) (*IntentDTO, error)
	Confirm(ctx context.Context, paymentIntentID string) (*ConfirmationDTO, error)
	OnboardingLink(ctx context.Context, restaurantID uuid.UUID, refreshURL, returnURL string) (*OnboardingLinkDTO, error)
	PublishableKey() (string, error)
}

type service struct {
	stripe      StripePaymentClient
	orders      orderRepository
	restaurants restaurantRepository
	keys        keyProvider
}

// NewService builds a payments service backed by the provided stack.
func NewService(stripeClient StripePaymentClient, orders orderRepository, restaurants restaurantRepository, keys keyProvider) (Service, error) {
	if stripeClient == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if restaurants == nil {
		return nil, fmt.Errorf("restaurant repository required")
	}
	if keys == nil {
		return nil, fmt.Errorf("key provider required")
	}
	return &service{stripe: stripeClient, orders: orders, restaurants: restaurants, keys: keys}, nil
}

// CreateIntent creates a payment intent for the order total and stores the
// intent id and client secret on the order.
func (s *service) CreateIntent(ctx context.Context, orderID uuid.UUID) (*IntentDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Paid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	if order.StripePaymentIntentID != nil && order.StripeClientSecret != nil {
		return &IntentDTO{IntentID: *order.StripePaymentIntentID, ClientSecret: *order.StripeClientSecret}, nil
	}

	amount, err := amountInMinorUnits(order.TotalAmount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "order total")
	}

	intent, err := s.stripe.CreateIntent(ctx, &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(order.Currency.String())),
		Metadata: map[string]string{
			"order_id":      order.ID.String(),
			"restaurant_id": order.RestaurantID.String(),
		},
	})
	if err != nil {
		return nil, providerError(err, "create payment intent")
	}

	if err := s.orders.AttachPaymentIntent(ctx, order.ID, intent.ID, intent.ClientSecret); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach payment intent")
	}
	return &IntentDTO{IntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// Confirm resolves a confirmation attempt. Stripe's `succeeded` and
// `processing` both count as success; everything else is a failure carrying
// the provider's message untouched.
func (s *service) Confirm(ctx context.Context, paymentIntentID string) (*ConfirmationDTO, error) {
	if strings.TrimSpace(paymentIntentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}

	intent, err := s.stripe.GetIntent(ctx, paymentIntentID, &stripe.PaymentIntentParams{})
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return &ConfirmationDTO{State: enums.PaymentStateFailed, Message: stripeErr.Msg}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch payment intent")
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusProcessing:
		return &ConfirmationDTO{State: enums.PaymentStateSucceeded}, nil
	default:
		message := string(intent.Status)
		if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
			message = intent.LastPaymentError.Msg
		}
		return &ConfirmationDTO{State: enums.PaymentStateFailed, Message: message}, nil
	}
}

// OnboardingLink creates (or reuses) the restaurant's Express account and
// returns a fresh Connect onboarding URL.
func (s *service) OnboardingLink(ctx context.Context, restaurantID uuid.UUID, refreshURL, returnURL string) (*OnboardingLinkDTO, error) {
	if restaurantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	if refreshURL == "" || returnURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refresh and return urls are required")
	}

	restaurant, err := s.restaurants.FindByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}

	accountID := ""
	if restaurant.StripeAccountID != nil {
		accountID = *restaurant.StripeAccountID
	}
	if accountID == "" {
		acct, err := s.stripe.CreateAccount(ctx, &stripe.AccountParams{
			Type: stripe.String(string(stripe.AccountTypeExpress)),
			Metadata: map[string]string{
				"restaurant_id": restaurant.ID.String(),
			},
		})
		if err != nil {
			return nil, providerError(err, "create connect account")
		}
		accountID = acct.ID
		if err := s.restaurants.SetStripeAccount(ctx, restaurant.ID, accountID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store connect account")
		}
	}

	link, err := s.stripe.CreateAccountLink(ctx, &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	})
	if err != nil {
		return nil, providerError(err, "create account link")
	}
	return &OnboardingLinkDTO{AccountID: accountID, URL: link.URL}, nil
}

// PublishableKey returns the storefront key. A blank key means the
// deployment is half-configured, which blocks the payment form.
func (s *service) PublishableKey() (string, error) {
	key := s.keys.PublishableKey()
	if key == "" {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "stripe publishable key is not configured")
	}
	return key, nil
}

func amountInMinorUnits(total string) (int64, error) {
	value, err := decimal.NewFromString(total)
	if err != nil {
		return 0, err
	}
	return value.Shift(2).Round(0).IntPart(), nil
}

func providerError(err error, action string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return pkgerrors.Wrap(pkgerrors.CodePayment, err, stripeErr.Msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
