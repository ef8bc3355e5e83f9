package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stemtrack/cartline-backend/internal/services"
	"github.com/stemtrack/cartline-backend/internal/types"
)

// APIClient talks to a remote cartline server and satisfies the session's
// CartSource, so a session can run against either the in-process service or
// a deployed instance.
type APIClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Login obtains and stores an operator token for subsequent requests.
func (c *APIClient) Login(ctx context.Context, name, password string) error {
	body := map[string]string{"name": name, "password": password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/login", body, &out); err != nil {
		return err
	}
	c.token = out.Token
	return nil
}

func (c *APIClient) CreateCart(ctx context.Context, setup services.CartSetup) (*types.Cart, error) {
	var cart types.Cart
	if err := c.do(ctx, http.MethodPost, "/api/carts", setup, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *APIClient) GetCart(ctx context.Context, id uuid.UUID) (*types.Cart, error) {
	var cart types.Cart
	if err := c.do(ctx, http.MethodGet, "/api/carts/"+id.String(), nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *APIClient) AddPackage(ctx context.Context, cartID uuid.UUID, variety string, length, quantity int) (*types.Package, error) {
	body := map[string]interface{}{
		"cartId":   cartID.String(),
		"variety":  variety,
		"length":   length,
		"quantity": quantity,
	}
	var pkg types.Package
	if err := c.do(ctx, http.MethodPost, "/api/packages", body, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (c *APIClient) DeletePackage(ctx context.Context, packageID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/packages/"+packageID.String(), nil, nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api client: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api client: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope struct {
			Error struct {
				Message string `json:"message"`
				Code    string `json:"code"`
			} `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil && envelope.Error.Message != "" {
			return fmt.Errorf("api client: %s %s: %s (%s)", method, path, envelope.Error.Message, envelope.Error.Code)
		}
		return fmt.Errorf("api client: %s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api client: decode response: %w", err)
	}
	return nil
}
