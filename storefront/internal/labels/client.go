package labels

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxDocumentBytes = 20 << 20

var ErrRendererUnavailable = errors.New("label renderer unavailable")

// Client posts ZPL to a rendering service and returns the rendered document.
type Client struct {
	url        string
	accept     string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithAccept sets the document type requested from the renderer.
func WithAccept(mime string) Option {
	return func(cl *Client) { cl.accept = mime }
}

func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		accept:     "application/pdf",
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContentType is the type of documents Render returns.
func (c *Client) ContentType() string {
	return c.accept
}

func (c *Client) Render(ctx context.Context, zpl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(zpl))
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", c.accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRendererUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read rendered labels: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRendererUnavailable, resp.StatusCode, bytes.TrimSpace(body[:min(len(body), 200)]))
	}
	if len(body) > maxDocumentBytes {
		return nil, fmt.Errorf("rendered labels exceed %d bytes", maxDocumentBytes)
	}
	return body, nil
}
