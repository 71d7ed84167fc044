// Package backend talks to the remote decision and simulation services.
package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"sniper-dashboard/models"
)

// StatusSuccess is the scan envelope status that carries usable data.
const StatusSuccess = "success"

// Endpoint paths relative to the configured base URL.
const (
	scanPath            = "/scan"
	simulationStatePath = "/simulation/state"
	simulationResetPath = "/simulation/reset"
)

// ScanResponse is the envelope returned by GET /scan.
// A nil Simulation means the snapshot did not change this cycle.
type ScanResponse struct {
	Status     string                  `json:"status"`
	Data       []models.Decision       `json:"data"`
	Simulation *models.SimulationState `json:"simulation,omitempty"`
	Logs       []string                `json:"logs,omitempty"`
	Message    string                  `json:"message,omitempty"`
}

// OK reports whether the scan carries a usable decision batch.
func (r *ScanResponse) OK() bool {
	return r != nil && r.Status == StatusSuccess
}

// ResetResponse is the envelope returned by POST /simulation/reset.
type ResetResponse struct {
	Status string                  `json:"status"`
	State  *models.SimulationState `json:"state"`
}

// Options configures the client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

// Client is a resty-backed client for the decision/simulation services.
type Client struct {
	client *resty.Client
}

// NewClient creates a client rooted at opts.BaseURL.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "sniper-dashboard/1.0")

	return &Client{client: client}
}

// Scan fetches the current decision batch.
func (c *Client) Scan(ctx context.Context) (*ScanResponse, error) {
	var out ScanResponse
	if err := c.do(ctx, http.MethodGet, scanPath, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SimulationState fetches the simulation snapshot.
func (c *Client) SimulationState(ctx context.Context) (*models.SimulationState, error) {
	var out models.SimulationState
	if err := c.do(ctx, http.MethodGet, simulationStatePath, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetSimulation asks the simulation service for a fresh account and
// returns the state it reports.
func (c *Client) ResetSimulation(ctx context.Context) (*models.SimulationState, error) {
	var out ResetResponse
	if err := c.do(ctx, http.MethodPost, simulationResetPath, &out); err != nil {
		return nil, err
	}
	if out.State == nil {
		return nil, &TransportError{Op: http.MethodPost + " " + simulationResetPath, Err: errors.New("response has no state")}
	}
	return out.State, nil
}

// do performs a request and decodes a 2xx JSON body into out. Every failure
// is reported as a *TransportError.
func (c *Client) do(ctx context.Context, method, path string, out any) error {
	op := method + " " + path

	req := c.client.R().SetContext(ctx)
	var (
		resp *resty.Response
		err  error
	)
	switch method {
	case http.MethodGet:
		resp, err = req.Get(path)
	case http.MethodPost:
		resp, err = req.Post(path)
	default:
		return &TransportError{Op: op, Err: errors.Errorf("unsupported method %s", method)}
	}
	if err != nil {
		return &TransportError{Op: op, Err: errors.Wrap(err, "request failed")}
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Err:        errors.Errorf("http non-2xx: %s", strings.TrimSpace(string(resp.Body()))),
		}
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode(), Err: errors.Wrap(err, "malformed response body")}
	}
	return nil
}
