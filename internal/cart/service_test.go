package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duboyz/kumiko-backend/pkg/enums"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
)

func TestAddItemMergesOnItemAndOption(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	itemID := uuid.New()
	optionID := uuid.New()
	optionName := "Large"

	plain := AddItemInput{MenuItemID: itemID, MenuItemName: "Ramen", Price: "10.00"}
	withOption := AddItemInput{
		MenuItemID:         itemID,
		MenuItemName:       "Ramen",
		Price:              "12.00",
		MenuItemOptionID:   &optionID,
		MenuItemOptionName: &optionName,
	}

	for i := 0; i < 3; i++ {
		_, err := svc.AddItem(context.Background(), "sess-1", plain)
		require.NoError(t, err)
	}
	session, err := svc.AddItem(context.Background(), "sess-1", withOption)
	require.NoError(t, err)

	require.Len(t, session.Lines, 2)
	assert.Equal(t, 3, session.Lines[0].Quantity, "same item without option merges")
	assert.Equal(t, 1, session.Lines[1].Quantity, "option variant gets its own line")
	assert.NotEqual(t, session.Lines[0].LineID, session.Lines[1].LineID)
}

func TestUpdateQuantityRemovesAtZero(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	session, err := svc.AddItem(context.Background(), "sess-2", AddItemInput{
		MenuItemID: uuid.New(), MenuItemName: "Gyoza", Price: "5.50",
	})
	require.NoError(t, err)
	lineID := session.Lines[0].LineID

	session, err = svc.UpdateQuantity(context.Background(), "sess-2", lineID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, session.Lines[0].Quantity)

	session, err = svc.UpdateQuantity(context.Background(), "sess-2", lineID, -3)
	require.NoError(t, err)
	assert.Empty(t, session.Lines, "line removed at zero")

	_, err = svc.UpdateQuantity(context.Background(), "sess-2", lineID, 1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected not-found for removed line, got %v", err)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestTotalsAcrossLines(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	tenner := AddItemInput{MenuItemID: uuid.New(), MenuItemName: "Katsu", Price: "10.00"}
	fiver := AddItemInput{MenuItemID: uuid.New(), MenuItemName: "Edamame", Price: "5.00"}

	_, err := svc.AddItem(ctx, "sess-3", tenner)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "sess-3", tenner)
	require.NoError(t, err)
	session, err := svc.AddItem(ctx, "sess-3", fiver)
	require.NoError(t, err)

	assert.Equal(t, "25.00", session.TotalAmount().StringFixed(2))
	assert.Equal(t, 3, session.ItemCount())
}

func TestClearItemsPreservesDraftAndContext(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	restaurantID := uuid.New()

	_, err := svc.SetRestaurantContext(ctx, "sess-4", ContextInput{
		RestaurantID: restaurantID, MenuID: uuid.New(), Currency: enums.CurrencyNOK,
	})
	require.NoError(t, err)
	_, err = svc.SetCustomerField(ctx, "sess-4", FieldName, "Yuki")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "sess-4", AddItemInput{
		MenuItemID: uuid.New(), MenuItemName: "Udon", Price: "9.00",
	})
	require.NoError(t, err)

	session, err := svc.ClearItems(ctx, "sess-4")
	require.NoError(t, err)
	assert.Empty(t, session.Lines)
	assert.Equal(t, "Yuki", session.Customer.Name, "customer draft survives clear")
	assert.Equal(t, restaurantID, session.RestaurantID, "context survives clear")
	assert.Equal(t, enums.CurrencyNOK, session.Currency)
}

func TestSetRestaurantContextRefusesSwitchWithItems(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetRestaurantContext(ctx, "sess-5", ContextInput{
		RestaurantID: uuid.New(), MenuID: uuid.New(), Currency: enums.CurrencyUSD,
	})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "sess-5", AddItemInput{
		MenuItemID: uuid.New(), MenuItemName: "Bao", Price: "4.00",
	})
	require.NoError(t, err)

	other := ContextInput{RestaurantID: uuid.New(), MenuID: uuid.New(), Currency: enums.CurrencyUSD}
	_, err = svc.SetRestaurantContext(ctx, "sess-5", other)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected conflict on restaurant switch, got %v", err)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	other.DiscardItems = true
	session, err := svc.SetRestaurantContext(ctx, "sess-5", other)
	require.NoError(t, err)
	assert.Empty(t, session.Lines, "lines discarded on switch")
	assert.Equal(t, other.RestaurantID, session.RestaurantID)
}

func TestResetCustomerInfoDefaults(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	for field, value := range map[CustomerField]string{
		FieldName:           "Aki",
		FieldPhone:          "555-0101",
		FieldEmail:          "aki@example.com",
		FieldPickupDate:     "2030-05-01",
		FieldPickupTime:     "18:30",
		FieldAdditionalNote: "no onions",
	} {
		_, err := svc.SetCustomerField(ctx, "sess-6", field, value)
		require.NoError(t, err, "set %s", field)
	}

	session, err := svc.ResetCustomerInfo(ctx, "sess-6")
	require.NoError(t, err)
	assert.Equal(t, CustomerDraft{PickupDate: "2024-01-01", PickupTime: "12:00"}, session.Customer)
}

func TestSessionPersistsAcrossLoads(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-7", AddItemInput{
		MenuItemID: uuid.New(), MenuItemName: "Tempura", Price: "11.00",
	})
	require.NoError(t, err)

	reloaded, err := svc.Get(ctx, "sess-7")
	require.NoError(t, err)
	require.Len(t, reloaded.Lines, 1)
	assert.Equal(t, "Tempura", reloaded.Lines[0].MenuItemName)

	require.NoError(t, svc.Discard(ctx, "sess-7"))
	assert.NotContains(t, store.sessions, "sess-7")
}

func TestSetCustomerFieldUnknownField(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.SetCustomerField(context.Background(), "sess-8", CustomerField("favoriteColor"), "red")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func newTestService(t *testing.T) (Service, *memoryStore) {
	t.Helper()
	store := &memoryStore{sessions: map[string]*Session{}}
	svc, err := NewService(store, Options{
		DefaultPickupTime: "12:00",
		Now: func() time.Time {
			return time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
		},
	})
	require.NoError(t, err)
	return svc, store
}

type memoryStore struct {
	sessions map[string]*Session
}

func (m *memoryStore) Load(_ context.Context, sessionID string) (*Session, error) {
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	clone := *session
	clone.Lines = append([]Line(nil), session.Lines...)
	return &clone, nil
}

func (m *memoryStore) Save(_ context.Context, session *Session) error {
	clone := *session
	clone.Lines = append([]Line(nil), session.Lines...)
	m.sessions[session.SessionID] = &clone
	return nil
}

func (m *memoryStore) Delete(_ context.Context, sessionID string) error {
	delete(m.sessions, sessionID)
	return nil
}
