// SPDX-License-Identifier: MIT

package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rostro36/evodiff/model"
	"go.uber.org/zap"
)

// DefaultTimeout bounds one remote scoring call.
const DefaultTimeout = 5 * time.Minute

// maxErrorBody caps how much of an error response is kept in the error.
const maxErrorBody = 512

// Request is the JSON body posted to a remote model.
type Request struct {
	Tokens    [][]int `json:"tokens"`
	Timesteps []int   `json:"timesteps"`
	Device    string  `json:"device,omitempty"`
	RunID     string  `json:"run_id,omitempty"`
}

// Response is the JSON body a remote model returns: the logits tensor in
// row-major [batch, length, vocab] order.
type Response struct {
	Shape  []int     `json:"shape"`
	Logits []float64 `json:"logits"`
}

// Client scores sequences against a model served over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
	header   http.Header
	log      *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) { c.header.Add(key, value) }
}

// WithLogger sets the client logger; nil keeps the no-op logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient returns a Client posting to endpoint, which must be an absolute
// http(s) URL.
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("NewClient(%q): %w", endpoint, ErrOptionViolation)
	}
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: DefaultTimeout},
		header:   make(http.Header),
		log:      zap.NewNop(),
	}
	for _, fn := range opts {
		fn(c)
	}

	return c, nil
}

// Score implements model.Scorer.
func (c *Client) Score(ctx context.Context, ec model.ExecContext, tokens [][]int, timesteps []int) (*model.Logits, error) {
	if _, err := model.CheckBatch(tokens, timesteps); err != nil {
		return nil, err
	}

	body, err := json.Marshal(Request{Tokens: tokens, Timesteps: timesteps, Device: ec.Device, RunID: ec.RunID})
	if err != nil {
		return nil, fmt.Errorf("scorer: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("scorer: build request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Content-Type", "application/json")

	began := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scorer: post %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return nil, fmt.Errorf("%w: %d: %s", ErrStatus, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out Response
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	if len(out.Shape) != 3 {
		return nil, fmt.Errorf("%w: shape %v is not [batch length vocab]", ErrBadResponse, out.Shape)
	}
	lg := &model.Logits{
		Shape: model.Shape{Batch: out.Shape[0], Length: out.Shape[1], Vocab: out.Shape[2]},
		Data:  out.Logits,
	}
	if n := lg.Batch * lg.Length * lg.Vocab; lg.Batch < 0 || lg.Length < 0 || lg.Vocab < 0 || n != len(lg.Data) {
		return nil, fmt.Errorf("%w: shape %s holds %d values", ErrBadResponse, lg.Shape, len(lg.Data))
	}
	c.log.Debug("scored batch",
		zap.Int("batch", lg.Batch),
		zap.Int("length", lg.Length),
		zap.String("device", ec.Device),
		zap.Duration("took", time.Since(began)),
	)

	return lg, nil
}
