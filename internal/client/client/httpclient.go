package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mazensapp/visitlog/internal/client/models"
	"github.com/mazensapp/visitlog/internal/common"
)

const defaultRequestTimeout = 30 * time.Second

// HTTPClient implements Client over the JSON/HTTP sync protocol.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewHTTPClient returns a client for the server at baseURL. tokens may be
// nil, in which case requests carry no Authorization header.
func NewHTTPClient(baseURL string, tokens TokenSource) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultRequestTimeout},
		tokens:  tokens,
	}
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil)
}

func (c *HTTPClient) UpdatesSince(ctx context.Context, epoch int64) (*UpdateBatch, error) {
	var out UpdateBatch
	path := "/updatesSince?epoch=" + strconv.FormatInt(epoch, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Sync(ctx context.Context, req *SyncRequest) (*SyncResponse, error) {
	var out SyncResponse
	if err := c.do(ctx, http.MethodPatch, "/sync", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Upload(ctx context.Context, visits []models.Visit, brands []models.Brand) (*SyncResponse, error) {
	body := struct {
		Visits []models.Visit `json:"visits"`
		Brands []models.Brand `json:"brands"`
	}{Visits: visits, Brands: brands}

	var out SyncResponse
	if err := c.do(ctx, http.MethodPatch, "/upload", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateVisit(ctx context.Context, v *models.Visit) (*models.Visit, error) {
	var out models.Visit
	if err := c.do(ctx, http.MethodPost, "/visits", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateVisit(ctx context.Context, v *models.Visit) (*models.Visit, error) {
	var out models.Visit
	path := "/visits/" + strconv.FormatInt(v.ID, 10)
	if err := c.do(ctx, http.MethodPatch, path, v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteVisit(ctx context.Context, id int64) (int64, error) {
	return c.delete(ctx, "/visits/"+strconv.FormatInt(id, 10))
}

func (c *HTTPClient) CreateBrand(ctx context.Context, b *models.Brand) (*models.Brand, error) {
	var out models.Brand
	if err := c.do(ctx, http.MethodPost, "/brands", b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateBrand(ctx context.Context, b *models.Brand) (*models.Brand, error) {
	var out models.Brand
	if err := c.do(ctx, http.MethodPatch, "/brands/"+url.PathEscape(b.ID), b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteBrand(ctx context.Context, id string) (int64, error) {
	return c.delete(ctx, "/brands/"+url.PathEscape(id))
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) delete(ctx context.Context, path string) (int64, error) {
	var out struct {
		Timestamp int64 `json:"timestamp"`
	}
	if err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return 0, err
	}
	return out.Timestamp, nil
}

// do performs one JSON round trip and maps failures onto the shared error
// taxonomy: connection-level problems and unexpected statuses become
// ErrTransport, undecodable payloads become ErrParse.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encoding %s %s: %v", common.ErrTransport, method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: building %s %s: %v", common.ErrTransport, method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("%w: token: %v", common.ErrTransport, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", common.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp.StatusCode, method, path); err != nil {
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decoding %s %s: %v", common.ErrParse, method, path, err)
		}
	}
	return nil
}

func mapStatus(status int, method, path string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, common.ErrNotFound)
	case status == http.StatusConflict:
		return fmt.Errorf("%s %s: %w", method, path, common.ErrConflict)
	default:
		return fmt.Errorf("%w: %s %s: unexpected status %d", common.ErrTransport, method, path, status)
	}
}
