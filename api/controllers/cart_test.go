package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duboyz/kumiko-backend/api/middleware"
	cartsvc "github.com/duboyz/kumiko-backend/internal/cart"
	"github.com/duboyz/kumiko-backend/pkg/enums"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
	"github.com/duboyz/kumiko-backend/pkg/types"
)

type stubCartService struct {
	session      *cartsvc.Session
	err          error
	lastAdd      cartsvc.AddItemInput
	lastField    cartsvc.CustomerField
	lastContext  cartsvc.ContextInput
	discardCalls int
}

func (s *stubCartService) Get(_ context.Context, _ string) (*cartsvc.Session, error) {
	return s.session, s.err
}

func (s *stubCartService) AddItem(_ context.Context, _ string, input cartsvc.AddItemInput) (*cartsvc.Session, error) {
	s.lastAdd = input
	return s.session, s.err
}

func (s *stubCartService) UpdateQuantity(_ context.Context, _ string, _ uuid.UUID, _ int) (*cartsvc.Session, error) {
	return s.session, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, _ string, _ uuid.UUID) (*cartsvc.Session, error) {
	return s.session, s.err
}

func (s *stubCartService) ClearItems(_ context.Context, _ string) (*cartsvc.Session, error) {
	return s.session, s.err
}

func (s *stubCartService) SetCustomerField(_ context.Context, _ string, field cartsvc.CustomerField, _ string) (*cartsvc.Session, error) {
	s.lastField = field
	return s.session, s.err
}

func (s *stubCartService) ResetCustomerInfo(_ context.Context, _ string) (*cartsvc.Session, error) {
	return s.session, s.err
}

func (s *stubCartService) SetRestaurantContext(_ context.Context, _ string, input cartsvc.ContextInput) (*cartsvc.Session, error) {
	s.lastContext = input
	return s.session, s.err
}

func (s *stubCartService) Discard(_ context.Context, _ string) error {
	s.discardCalls++
	return s.err
}

func sessionFixture() *cartsvc.Session {
	return &cartsvc.Session{
		SessionID: "sess-1",
		Currency:  enums.CurrencyNOK,
		Lines: []cartsvc.Line{
			{LineID: uuid.New(), MenuItemID: uuid.New(), MenuItemName: "Ramen", Price: "12.50", Quantity: 2},
		},
	}
}

func withSession(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithSessionID(req.Context(), "sess-1"))
}

func TestCartFetchReturnsTotals(t *testing.T) {
	handler := CartFetch(&stubCartService{session: sessionFixture()}, nil)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var envelope struct {
		Data cartResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "25.00", envelope.Data.TotalAmount)
	assert.Equal(t, 2, envelope.Data.ItemCount)
}

func TestCartAddItemRejectsMissingName(t *testing.T) {
	svc := &stubCartService{session: sessionFixture()}
	handler := CartAddItem(svc, nil)

	body := `{"menuItemId":"` + uuid.NewString() + `","price":"10.00"}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCartAddItemPassesSnapshot(t *testing.T) {
	svc := &stubCartService{session: sessionFixture()}
	handler := CartAddItem(svc, nil)

	itemID := uuid.New()
	body := `{"menuItemId":"` + itemID.String() + `","menuItemName":"Gyoza","price":"5.00"}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, itemID, svc.lastAdd.MenuItemID)
	assert.Equal(t, "Gyoza", svc.lastAdd.MenuItemName)
}

func TestCartSetCustomerFieldRejectsUnknownField(t *testing.T) {
	handler := CartSetCustomerField(&stubCartService{session: sessionFixture()}, nil)

	req := withSession(httptest.NewRequest(http.MethodPatch, "/api/v1/cart/customer", strings.NewReader(`{"field":"favoriteColor","value":"red"}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	var envelope types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, string(pkgerrors.CodeValidation), envelope.Error.Code)
}

func TestCartSetContextParsesCurrency(t *testing.T) {
	svc := &stubCartService{session: sessionFixture()}
	handler := CartSetContext(svc, nil)

	body := `{"restaurantId":"` + uuid.NewString() + `","menuId":"` + uuid.NewString() + `","currency":"NOK","discardItems":true}`
	req := withSession(httptest.NewRequest(http.MethodPut, "/api/v1/cart/context", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, enums.CurrencyNOK, svc.lastContext.Currency)
	assert.True(t, svc.lastContext.DiscardItems)
}
