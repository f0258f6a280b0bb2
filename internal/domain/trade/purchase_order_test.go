package trade

import (
	"testing"
	"time"

	"github.com/erp/garment/internal/domain/shared"
	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func createTestPurchaseOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	po, err := NewPurchaseOrder(uuid.New(), "PO-2025-001", "Acme Apparel", valueobject.USD, decimal.NewFromInt(1))
	require.NoError(t, err)
	return po
}

func TestPurchaseOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  PurchaseOrderStatus
		isValid bool
	}{
		{PurchaseOrderStatusDraft, true},
		{PurchaseOrderStatusConfirmed, true},
		{PurchaseOrderStatusInProduction, true},
		{PurchaseOrderStatusShipped, true},
		{PurchaseOrderStatusCompleted, true},
		{PurchaseOrderStatusCancelled, true},
		{PurchaseOrderStatus("INVALID"), false},
		{PurchaseOrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestNewPurchaseOrder(t *testing.T) {
	t.Run("creates draft order", func(t *testing.T) {
		po := createTestPurchaseOrder(t)
		assert.Equal(t, PurchaseOrderStatusDraft, po.Status)
		assert.True(t, po.TotalAmount.IsZero())
		assert.Empty(t, po.LineItems)
	})

	t.Run("requires exchange rate", func(t *testing.T) {
		_, err := NewPurchaseOrder(uuid.New(), "PO-1", "Acme", valueobject.USD, decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrMissingExchangeRate)
	})

	t.Run("requires PO number", func(t *testing.T) {
		_, err := NewPurchaseOrder(uuid.New(), " ", "Acme", valueobject.USD, decimal.NewFromInt(1))
		assert.Error(t, err)
	})
}

func TestPurchaseOrder_AddLineItem(t *testing.T) {
	po := createTestPurchaseOrder(t)

	_, err := po.AddLineItem("ST-100", "Navy", decimal.NewFromInt(100), decimal.RequireFromString("12.5"))
	require.NoError(t, err)
	_, err = po.AddLineItem("ST-100", "Black", decimal.NewFromInt(50), decimal.NewFromInt(12))
	require.NoError(t, err)

	assert.Equal(t, "1850", po.TotalAmount.String())
	assert.Equal(t, "150", po.TotalQuantity().String())
	assert.Equal(t, "1250", po.LineItems[0].LineTotal.String())

	_, err = po.AddLineItem("", "Navy", decimal.NewFromInt(1), decimal.NewFromInt(1))
	assert.Error(t, err)
	_, err = po.AddLineItem("ST-1", "Navy", decimal.NewFromInt(-1), decimal.NewFromInt(1))
	assert.Error(t, err)
}

func TestPurchaseOrder_Rate(t *testing.T) {
	po := createTestPurchaseOrder(t)
	po.TotalAmount = decimal.NewFromInt(10000)
	po.ExchangeRate = nil

	_, err := po.EstimatedRevenue()
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrMissingExchangeRate)
	assert.Contains(t, err.Error(), "PO-2025-001")

	rate := decimal.RequireFromString("0.14")
	po.ExchangeRate = &rate
	rev, err := po.EstimatedRevenue()
	require.NoError(t, err)
	assert.Equal(t, "1400", rev.String())
}

func TestPurchaseOrder_AnchorDate(t *testing.T) {
	tests := []struct {
		name     string
		terms    Incoterm
		order    *time.Time
		shipBy   *time.Time
		inHouse  *time.Time
		expected *time.Time
	}{
		{"DDP uses in-house date", IncotermDDP, date(2024, 12, 1), date(2025, 1, 10), date(2025, 2, 1), date(2025, 2, 1)},
		{"EXW uses in-house date", IncotermEXW, nil, date(2025, 1, 10), date(2025, 3, 5), date(2025, 3, 5)},
		{"DDP falls back to order date", IncotermDDP, date(2024, 12, 1), date(2025, 1, 10), nil, date(2024, 12, 1)},
		{"FOB uses ship-by date", IncotermFOB, date(2024, 12, 1), date(2025, 1, 10), date(2025, 2, 1), date(2025, 1, 10)},
		{"CIF falls back to order date", IncotermCIF, date(2024, 12, 1), nil, date(2025, 2, 1), date(2024, 12, 1)},
		{"unknown term uses ship-by date", Incoterm("DAP"), date(2024, 12, 1), date(2025, 1, 10), date(2025, 2, 1), date(2025, 1, 10)},
		{"missing term uses ship-by date", Incoterm(""), nil, date(2025, 1, 10), nil, date(2025, 1, 10)},
		{"no dates at all", IncotermFOB, nil, nil, date(2025, 2, 1), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			po := createTestPurchaseOrder(t)
			po.ShippingTerms = tt.terms
			po.OrderDate = tt.order
			po.ShipByDate = tt.shipBy
			po.IHDate = tt.inHouse

			got := po.AnchorDate()
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.expected.Equal(*got))
		})
	}
}

func TestParseIncoterm(t *testing.T) {
	assert.Equal(t, IncotermDDP, ParseIncoterm(" ddp "))
	assert.Equal(t, Incoterm("DAP"), ParseIncoterm("dap"))
}

func TestPurchaseOrder_LinesMatching(t *testing.T) {
	po := createTestPurchaseOrder(t)
	_, _ = po.AddLineItem("ST-1", "Navy", decimal.NewFromInt(10), decimal.NewFromInt(1))
	_, _ = po.AddLineItem("ST-1", "Navy", decimal.NewFromInt(20), decimal.NewFromInt(1))
	_, _ = po.AddLineItem("ST-1", "Red", decimal.NewFromInt(30), decimal.NewFromInt(1))

	assert.Len(t, po.LinesMatching("ST-1", "Navy"), 2)
	assert.Len(t, po.LinesMatching("ST-1", "Red"), 1)
	assert.Empty(t, po.LinesMatching("ST-2", "Red"))
	assert.NotNil(t, po.FindLineItem(po.LineItems[2].ID))
	assert.Nil(t, po.FindLineItem(uuid.New()))
}
