package clients_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/clients"
)

func TestOrderClient_PatchStatusYApplyPicking(t *testing.T) {
	var calls []string
	var (
		lines     []ports.PickedLine
		pickingID string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.URL.Path == "/orders/ORD-1/picking" {
			var body struct {
				PickingID string             `json:"picking_id"`
				Lines     []ports.PickedLine `json:"lines"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			lines = body.Lines
			pickingID = body.PickingID
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := clients.NewOrderClient(srv.URL+"/", "svc-token", time.Second)
	ctx := context.Background()
	require.NoError(t, c.ApplyPicking(ctx, "ORD-1", "pk-1", []ports.PickedLine{
		{ProductID: "p1", LotID: "L2", LocationID: "A", Quantity: decimal.NewFromInt(4), AdjustmentReason: "L1 inaccesible"},
	}))
	require.NoError(t, c.PatchStatus(ctx, "ORD-1", ports.OrderStatusPrepared))

	assert.Equal(t, []string{"POST /orders/ORD-1/picking", "PATCH /orders/ORD-1/status"}, calls)
	assert.Equal(t, "pk-1", pickingID)
	require.Len(t, lines, 1)
	assert.True(t, decimal.NewFromInt(4).Equal(lines[0].Quantity))
	assert.Equal(t, "L1 inaccesible", lines[0].AdjustmentReason)
}

func TestOrderClient_Errores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/orders/missing" {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := clients.NewOrderClient(srv.URL, "", time.Second)
	_, err := c.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = c.PatchStatus(context.Background(), "ORD-2", ports.OrderStatusPreparing)
	var se *clients.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Status)
}

func TestCatalogClient_BatchLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/batch", r.URL.Path)
		var req struct {
			IDs []string `json:"ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"p1", "p2"}, req.IDs)
		_, _ = w.Write([]byte(`{"products":[{"id":"p1","name":"Café","sku":"CAF-1","unit":"KG"}]}`))
	}))
	defer srv.Close()

	got, err := clients.NewCatalogClient(srv.URL, "", time.Second).BatchLookup(context.Background(), []string{"p1", "p2"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CAF-1", got[0].SKU)
}

func TestUserDirectory_SinIDsNoLlama(t *testing.T) {
	got, err := clients.NewUserDirectory("http://127.0.0.1:1", "", time.Second).BatchLookup(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
