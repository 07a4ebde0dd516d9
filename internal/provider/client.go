package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crypto-insight/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	userAgent       = "CryptoInsight/1.0"
	maxResponseSize = 8 << 20
	maxErrorBody    = 512
)

// AuthScheme selects how the API key is attached to requests.
type AuthScheme int

const (
	AuthNone AuthScheme = iota
	// AuthAPIKey sends "Authorization: Apikey <key>", or the raw key in
	// KeyHeader when that is set.
	AuthAPIKey
	// AuthBearer sends "Authorization: Bearer <key>".
	AuthBearer
)

// Endpoint describes how to reach one provider. Paths maps each supported
// operation to a template whose {placeholders} are filled from request
// parameters.
type Endpoint struct {
	Name      string
	BaseURL   string
	Auth      AuthScheme
	APIKey    string
	KeyHeader string
	// Accept overrides the default application/json Accept header.
	Accept string
	Paths  map[domain.Operation]string
}

type restClient struct {
	endpoint Endpoint
	client   *http.Client
	tracer   trace.Tracer
}

func newRESTClient(tracer trace.Tracer, endpoint Endpoint) restClient {
	endpoint.BaseURL = strings.TrimRight(endpoint.BaseURL, "/")
	return restClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		tracer:   tracer,
	}
}

// Name identifies the provider in logs, throttle keys and chain config.
func (c *restClient) Name() string {
	return c.endpoint.Name
}

func (c *restClient) supports(op domain.Operation) bool {
	_, ok := c.endpoint.Paths[op]
	return ok
}

// buildURL expands the operation's path template.
func (c *restClient) buildURL(op domain.Operation, params map[string]string) (string, error) {
	tmpl, ok := c.endpoint.Paths[op]
	if !ok {
		return "", fmt.Errorf("%s %s: %w", c.endpoint.Name, op, ErrUnsupported)
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", url.QueryEscape(v))
	}
	path := strings.NewReplacer(pairs...).Replace(tmpl)
	if strings.Contains(path, "{") {
		return "", fmt.Errorf("%s %s: unfilled path template %q", c.endpoint.Name, op, path)
	}
	return c.endpoint.BaseURL + path, nil
}

func (c *restClient) authorize(req *http.Request) {
	key := c.endpoint.APIKey
	if key == "" {
		return
	}
	switch c.endpoint.Auth {
	case AuthAPIKey:
		if c.endpoint.KeyHeader != "" {
			req.Header.Set(c.endpoint.KeyHeader, key)
		} else {
			req.Header.Set("Authorization", "Apikey "+key)
		}
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+key)
	}
}

// get performs the operation's request and returns the raw body. Non-2xx
// answers become *StatusError.
func (c *restClient) get(ctx context.Context, op domain.Operation, params map[string]string) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, c.endpoint.Name+".get")
	defer span.End()
	span.SetAttributes(
		attribute.String("provider", c.endpoint.Name),
		attribute.String("operation", string(op)),
	)

	u, err := c.buildURL(op, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", firstNonEmpty(c.endpoint.Accept, "application/json"))
	req.Header.Set("User-Agent", userAgent)
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("%s request: %w", c.endpoint.Name, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		span.SetStatus(codes.Error, resp.Status)
		return nil, &StatusError{
			Provider:   c.endpoint.Name,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s read response: %w", c.endpoint.Name, err)
	}
	return body, nil
}

// getJSON performs the request and decodes the body into out.
func (c *restClient) getJSON(ctx context.Context, op domain.Operation, params map[string]string, out any) error {
	body, err := c.get(ctx, op, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s decode %s: %w: %v", c.endpoint.Name, op, ErrMalformed, err)
	}
	return nil
}
