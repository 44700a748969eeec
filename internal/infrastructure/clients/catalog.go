package clients

import (
	"context"
	"net/http"
	"time"

	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

var (
	_ ports.CatalogClient = (*CatalogClient)(nil)
	_ ports.UserDirectory = (*UserDirectory)(nil)
)

type batchRequest struct {
	IDs []string `json:"ids"`
}

// CatalogClient consulta productos por lote: POST /products/batch.
type CatalogClient struct {
	c *jsonClient
}

// NewCatalogClient construye el adaptador.
func NewCatalogClient(baseURL, token string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{c: newJSONClient("catalog", baseURL, token, timeout)}
}

// BatchLookup devuelve los productos encontrados; los ids desconocidos se omiten.
func (cl *CatalogClient) BatchLookup(ctx context.Context, productIDs []string) ([]entity.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var resp struct {
		Products []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			SKU  string `json:"sku"`
			Unit string `json:"unit"`
		} `json:"products"`
	}
	if err := cl.c.do(ctx, http.MethodPost, "/products/batch", batchRequest{IDs: productIDs}, &resp); err != nil {
		return nil, err
	}
	out := make([]entity.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		out = append(out, entity.Product{ID: p.ID, Name: p.Name, SKU: p.SKU, Unit: p.Unit})
	}
	return out, nil
}

// UserDirectory consulta operarios por lote: POST /users/batch.
type UserDirectory struct {
	c *jsonClient
}

// NewUserDirectory construye el adaptador.
func NewUserDirectory(baseURL, token string, timeout time.Duration) *UserDirectory {
	return &UserDirectory{c: newJSONClient("users", baseURL, token, timeout)}
}

// BatchLookup devuelve los usuarios encontrados.
func (u *UserDirectory) BatchLookup(ctx context.Context, userIDs []string) ([]entity.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var resp struct {
		Users []struct {
			ID       string `json:"id"`
			FullName string `json:"full_name"`
		} `json:"users"`
	}
	if err := u.c.do(ctx, http.MethodPost, "/users/batch", batchRequest{IDs: userIDs}, &resp); err != nil {
		return nil, err
	}
	out := make([]entity.User, 0, len(resp.Users))
	for _, x := range resp.Users {
		out = append(out, entity.User{ID: x.ID, FullName: x.FullName})
	}
	return out, nil
}
