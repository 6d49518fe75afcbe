// Package client is payflowctl's REST client for the PayFlow API: plain
// net/http plus the two auth schemes the gateway expects — Bearer for the
// JWT-protected /auth and /merchants routes, Basic for the API-key-protected
// /v1 routes.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"payflow/internal/cli/config"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    config.APIURL(),
	}
}

// apiError mirrors the gateway's error envelope closely enough to surface a
// readable message instead of a raw status code.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(method, endpoint string, payload interface{}, authed bool) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	if authed {
		if keyID := config.KeyID(); keyID != "" && len(endpoint) >= 4 && endpoint[:4] == "/v1/" {
			req.SetBasicAuth(keyID, config.KeySecret())
		} else if token := config.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("%s: %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func (c *Client) PublicPost(endpoint string, payload interface{}) ([]byte, error) {
	return c.do(http.MethodPost, endpoint, payload, false)
}

func (c *Client) PublicGet(endpoint string) ([]byte, error) {
	return c.do(http.MethodGet, endpoint, nil, false)
}

// GetRaw behaves like PublicGet but returns the response body even when the
// status code signals an error, since /health returns a meaningful JSON body
// on a 503 "degraded" response.
func (c *Client) GetRaw(endpoint string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (c *Client) Post(endpoint string, payload interface{}) ([]byte, error) {
	return c.do(http.MethodPost, endpoint, payload, true)
}

func (c *Client) Get(endpoint string) ([]byte, error) {
	return c.do(http.MethodGet, endpoint, nil, true)
}

func (c *Client) Put(endpoint string, payload interface{}) ([]byte, error) {
	return c.do(http.MethodPut, endpoint, payload, true)
}

func (c *Client) Delete(endpoint string) ([]byte, error) {
	return c.do(http.MethodDelete, endpoint, nil, true)
}

// envelope unwraps the gateway's {"data": ...} success envelope into out.
func envelope(raw []byte, out interface{}) error {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return err
	}
	if wrapper.Data == nil {
		return nil
	}
	return json.Unmarshal(wrapper.Data, out)
}

// Decode is exported so command packages can unwrap a response into their
// own DTO shape.
func Decode(raw []byte, out interface{}) error {
	return envelope(raw, out)
}
