// Package httpstore implements the store contract against a remote
// cache server over HTTP+JSON, so processes on other machines can
// mount a shared store without linking its backend. The remote side is
// the gin server in internal/routes; batches travel as one pipeline
// request and execute on the server store's own pipeline.
//
// Keys travel as URL path segments and therefore must not contain '/'.
package httpstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"distributed-lru-cache/internal/handlers"
	"distributed-lru-cache/internal/store"
)

// Options configures a Client.
type Options struct {
	BaseURL  string // e.g. http://cache-host:8010
	ClientID string
	APIKey   string

	// HTTPClient overrides the default client, e.g. to bound latency
	// with a Timeout. The cache core itself imposes none.
	HTTPClient *http.Client
}

// Client is a Store conformer backed by a remote cache server.
type Client struct {
	baseURL  string
	clientID string
	apiKey   string
	http     *http.Client
	token    string
}

// Dial exchanges the API key for a bearer token and returns a ready
// client.
func Dial(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{
		baseURL:  opts.BaseURL,
		clientID: opts.ClientID,
		apiKey:   opts.APIKey,
		http:     httpClient,
	}
	if err := c.authenticate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) authenticate() error {
	var resp handlers.TokenResponse
	err := c.roundTrip(http.MethodPost, "/api/token",
		handlers.TokenRequest{ClientID: c.clientID, APIKey: c.apiKey}, &resp, false)
	if err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// do performs an authenticated request, re-authenticating once when
// the token has expired.
func (c *Client) do(method, path string, body, out any) error {
	err := c.roundTrip(method, path, body, out, true)
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusUnauthorized {
		if err := c.authenticate(); err != nil {
			return err
		}
		return c.roundTrip(method, path, body, out, true)
	}
	return err
}

type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.code, e.message)
}

func (c *Client) roundTrip(method, path string, body, out any, withAuth bool) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return store.Failure("request", path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return store.Failure("request", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withAuth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return store.Failure("request", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return store.Failure("request", path, &statusError{code: resp.StatusCode, message: payload.Error})
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return store.Failure("response", path, err)
		}
	}
	return nil
}

func keyPath(parts ...string) string {
	path := ""
	for _, p := range parts {
		path += "/" + url.PathEscape(p)
	}
	return path
}

// Get implements Store.Get.
func (c *Client) Get(key string) ([]byte, bool, error) {
	var resp handlers.GetKeyResponse
	if err := c.do(http.MethodGet, "/api/store/keys"+keyPath(key), nil, &resp); err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Found, nil
}

// Set implements Store.Set.
func (c *Client) Set(key string, value []byte, ttl time.Duration) error {
	req := handlers.SetKeyRequest{Value: value, TTLMillis: ttl.Milliseconds()}
	return c.do(http.MethodPut, "/api/store/keys"+keyPath(key), req, nil)
}

// Delete implements Store.Delete.
func (c *Client) Delete(key string) (bool, error) {
	var resp handlers.DeleteKeyResponse
	if err := c.do(http.MethodDelete, "/api/store/keys"+keyPath(key), nil, &resp); err != nil {
		return false, err
	}
	return resp.Existed, nil
}

// Exists implements Store.Exists.
func (c *Client) Exists(key string) (bool, error) {
	var resp handlers.ExistsResponse
	if err := c.do(http.MethodGet, "/api/store/keys"+keyPath(key)+"/exists", nil, &resp); err != nil {
		return false, err
	}
	return resp.Exists, nil
}

// LRange implements Store.LRange.
func (c *Client) LRange(key string, start, end int64) ([]string, error) {
	var resp handlers.ListRangeResponse
	path := fmt.Sprintf("/api/store/lists%s?start=%d&end=%d", keyPath(key), start, end)
	if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Values == nil {
		return []string{}, nil
	}
	return resp.Values, nil
}

// LIndex implements Store.LIndex.
func (c *Client) LIndex(key string, index int64) (string, bool, error) {
	var resp handlers.ListIndexResponse
	path := fmt.Sprintf("/api/store/lists%s/index/%d", keyPath(key), index)
	if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
		return "", false, err
	}
	return resp.Value, resp.Found, nil
}

// LRem implements Store.LRem.
func (c *Client) LRem(key string, count int64, value string) (int64, error) {
	var resp handlers.ListRemoveResponse
	req := handlers.ListRemoveRequest{Count: count, Value: value}
	if err := c.do(http.MethodPost, "/api/store/lists"+keyPath(key)+"/remove", req, &resp); err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

// RPush implements Store.RPush.
func (c *Client) RPush(key string, values ...string) (int64, error) {
	var resp handlers.ListPushResponse
	req := handlers.ListPushRequest{Values: values}
	if err := c.do(http.MethodPost, "/api/store/lists"+keyPath(key)+"/push", req, &resp); err != nil {
		return 0, err
	}
	return resp.Length, nil
}

// Incr implements Store.Incr.
func (c *Client) Incr(key string) (int64, error) {
	var resp handlers.CounterResponse
	if err := c.do(http.MethodPost, "/api/store/counters"+keyPath(key)+"/incr", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Value, nil
}

// Decr implements Store.Decr.
func (c *Client) Decr(key string) (int64, error) {
	var resp handlers.CounterResponse
	if err := c.do(http.MethodPost, "/api/store/counters"+keyPath(key)+"/decr", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Value, nil
}

// Pipeline implements Store.Pipeline.
func (c *Client) Pipeline() store.Pipeline {
	return &httpPipeline{client: c}
}

var _ store.Store = (*Client)(nil)
