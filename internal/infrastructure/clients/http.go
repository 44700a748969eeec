// Package clients implementa los puertos hacia el sistema de órdenes, el catálogo y el
// directorio de usuarios sobre HTTP+JSON. Cada llamada abre un span cliente y propaga el contexto de traza.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Almacen-api/internal/domain"
)

const maxBody = 1 << 20

var tracer = otel.Tracer("almacen/clients")

// jsonClient cliente HTTP común: base URL, token de servicio y timeout.
type jsonClient struct {
	name    string
	baseURL string
	token   string
	http    *http.Client
}

func newJSONClient(name, baseURL, token string, timeout time.Duration) *jsonClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &jsonClient{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// StatusError respuesta no exitosa del servicio remoto.
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.Status, e.Body)
}

// do envía in como JSON (si no es nil) y decodifica la respuesta en out (si no es nil).
// 404 se traduce a domain.ErrNotFound.
func (c *jsonClient) do(ctx context.Context, method, path string, in, out any) error {
	ctx, span := tracer.Start(ctx, c.name+" "+method, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: serializar request: %w", c.name, err)
		}
		body = bytes.NewReader(raw)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%s: crear request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	span.SetAttributes(
		attribute.String("http.url", url),
		attribute.String("http.method", method),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if ctx.Err() != nil {
			return fmt.Errorf("%s: timeout o cancelación: %w", c.name, ctx.Err())
		}
		return fmt.Errorf("%s: llamada HTTP fallida: %w", c.name, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%s: leer respuesta: %w", c.name, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := &StatusError{Service: c.name, Status: resp.StatusCode, Body: string(raw)}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decodificar respuesta: %w", c.name, err)
	}
	return nil
}
