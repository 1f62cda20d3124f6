package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cryptogram-sync/core/reconcile"
	"cryptogram-sync/core/syncerr"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

const (
	opRequestPlan = "request_plan"
	opFetchGame   = "fetch_game"
	opUploadGame  = "upload_game"

	// maxBody bounds every response body read.
	maxBody = 16 << 20
	// excerptLen bounds body excerpts in logs and error messages.
	excerptLen = 256
)

// PayloadArchiver receives response bodies that failed to decode.
type PayloadArchiver interface {
	ArchivePayload(ctx context.Context, kind string, body []byte) error
}

// Client talks to the sync server. It implements reconcile.Remote.
type Client struct {
	base     string
	hc       *http.Client
	cfg      Config
	schema   *gojsonschema.Schema
	archiver PayloadArchiver
	logger   *zap.Logger
}

var _ reconcile.Remote = (*Client)(nil)

// NewClient creates a client. Archiver may be nil.
func NewClient(cfg Config, archiver PayloadArchiver, logger *zap.Logger) (*Client, error) {
	if cfg.PlanTimeout <= 0 {
		cfg.PlanTimeout = 120 * time.Second
	}
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = 45 * time.Second
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	schema, err := compilePlanSchema()
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: cfg.DialTimeout,
	}

	return &Client{
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		hc:       &http.Client{Transport: transport},
		cfg:      cfg,
		schema:   schema,
		archiver: archiver,
		logger:   logger,
	}, nil
}

// RequestPlan posts a plan request and decodes the plan.
func (c *Client) RequestPlan(ctx context.Context, token string, req reconcile.PlanRequest) (*reconcile.Plan, error) {
	if token == "" {
		return nil, syncerr.Newf(syncerr.AuthenticationRequired, opRequestPlan, "", "no access token")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.PlanTimeout)
	defer cancel()

	status, respBody, err := c.do(ctx, opRequestPlan, "", token, http.MethodPost, "/api/games/reconcile", body)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, rejected(opRequestPlan, "", status, respBody)
	}

	if err := validate(c.schema, respBody); err != nil {
		return nil, c.decodeFailed(ctx, opRequestPlan, "", respBody, err)
	}
	var plan reconcile.Plan
	if err := json.Unmarshal(respBody, &plan); err != nil {
		return nil, c.decodeFailed(ctx, opRequestPlan, "", respBody, err)
	}
	return &plan, nil
}

// FetchGame downloads a game payload. The payload is returned undecoded.
func (c *Client) FetchGame(ctx context.Context, token, id string) (json.RawMessage, error) {
	if token == "" {
		return nil, syncerr.Newf(syncerr.AuthenticationRequired, opFetchGame, id, "no access token")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ItemTimeout)
	defer cancel()

	status, body, err := c.do(ctx, opFetchGame, id, token, http.MethodGet, "/api/games/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, rejected(opFetchGame, id, status, body)
	}
	if !json.Valid(body) {
		return nil, c.decodeFailed(ctx, opFetchGame, id, body, errors.New("malformed JSON"))
	}
	return json.RawMessage(body), nil
}

// UploadGame uploads a game payload. Both 200 and 201 count as success.
func (c *Client) UploadGame(ctx context.Context, token, id string, payload json.RawMessage) error {
	if token == "" {
		return syncerr.Newf(syncerr.AuthenticationRequired, opUploadGame, id, "no access token")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ItemTimeout)
	defer cancel()

	status, body, err := c.do(ctx, opUploadGame, id, token, http.MethodPost, "/api/games", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return rejected(opUploadGame, id, status, body)
	}
	return nil
}

// do performs one request and reads the full response body.
func (c *Client) do(ctx context.Context, op, id, token, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return 0, nil, syncerr.New(syncerr.Transport, op, id, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, syncerr.New(syncerr.Transport, op, id, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, nil, syncerr.New(syncerr.Transport, op, id, err)
	}

	c.logger.Debug("Sync server response",
		zap.String("op", op),
		zap.String("game_id", id),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	return resp.StatusCode, respBody, nil
}

// decodeFailed logs and archives a body that could not be decoded.
func (c *Client) decodeFailed(ctx context.Context, op, id string, body []byte, cause error) error {
	c.logger.Error("Failed to decode sync server response",
		zap.String("op", op),
		zap.String("game_id", id),
		zap.Int("body_size", len(body)),
		zap.String("body_excerpt", excerpt(body)),
		zap.Error(cause))

	if c.archiver != nil {
		// the request context may already be close to its deadline
		archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := c.archiver.ArchivePayload(archiveCtx, op, body); err != nil {
			c.logger.Warn("Failed to archive undecodable payload", zap.String("op", op), zap.Error(err))
		}
	}
	return syncerr.New(syncerr.DecodeFailed, op, id, cause)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// rejected builds a ServerRejected error from a {"message"} or {"error"} body.
func rejected(op, id string, status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		message = payload.Message
		if message == "" {
			message = payload.Error
		}
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return syncerr.Rejected(op, id, status, message)
}

func excerpt(body []byte) string {
	if len(body) <= excerptLen {
		return string(body)
	}
	return string(body[:excerptLen]) + "..."
}
