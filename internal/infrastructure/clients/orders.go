package clients

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/jhoicas/Almacen-api/internal/application/ports"
)

var _ ports.OrderClient = (*OrderClient)(nil)

// OrderClient adaptador del sistema de órdenes.
//
//	GET   /orders/{id}
//	POST  /orders/{id}/picking   {"picking_id": "...", "lines": [...]}
//	PATCH /orders/{id}/status    {"status": "..."}
type OrderClient struct {
	c *jsonClient
}

// NewOrderClient construye el adaptador.
func NewOrderClient(baseURL, token string, timeout time.Duration) *OrderClient {
	return &OrderClient{c: newJSONClient("orders", baseURL, token, timeout)}
}

// GetOrder obtiene la orden de origen.
func (o *OrderClient) GetOrder(ctx context.Context, orderID string) (*ports.Order, error) {
	var out ports.Order
	if err := o.c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApplyPicking informa lo efectivamente preparado por lote y ubicación.
func (o *OrderClient) ApplyPicking(ctx context.Context, orderID, pickingID string, lines []ports.PickedLine) error {
	body := struct {
		PickingID string             `json:"picking_id"`
		Lines     []ports.PickedLine `json:"lines"`
	}{PickingID: pickingID, Lines: lines}
	return o.c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/picking", body, nil)
}

// PatchStatus cambia el estado de preparación de la orden.
func (o *OrderClient) PatchStatus(ctx context.Context, orderID, status string) error {
	body := struct {
		Status string `json:"status"`
	}{Status: status}
	return o.c.do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(orderID)+"/status", body, nil)
}
