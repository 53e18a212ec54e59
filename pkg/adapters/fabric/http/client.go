package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aescanero/alquimia/pkg/domain"
	"github.com/aescanero/alquimia/pkg/ports"
)

// Client implements ports.FabricClient over the fabric's REST API.
// Authentication uses an identifier/secret pair sent per request; the
// secret is never logged and never persisted.
//
// Timeouts are the caller's responsibility via ctx; the client treats
// a timeout like any other transport failure and reports it as a
// connectivity error.
type Client struct {
	baseURL  string
	identity string
	secret   string
	http     *http.Client
	metrics  ports.MetricsCollector
	logger   *zap.Logger
}

// Config holds fabric client configuration.
type Config struct {
	BaseURL  string
	Identity string
	Secret   string
	Metrics  ports.MetricsCollector
	Logger   *zap.Logger
}

// NewClient creates a new fabric client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("fabric base URL is required")
	}
	if cfg.Identity == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("fabric credentials are required")
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		identity: cfg.Identity,
		secret:   cfg.Secret,
		http:     &http.Client{},
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}, nil
}

type createTasksRequest struct {
	Scope      string                  `json:"scope"`
	Experiment string                  `json:"experiment"`
	Protocol   string                  `json:"protocol"`
	Settings   domain.ProtocolSettings `json:"settings"`
	Count      int                     `json:"count"`
}

type createTasksResponse struct {
	TaskIDs []domain.TaskID `json:"task_ids"`
}

// CreateTasks registers count tasks for the spec under the scope.
func (c *Client) CreateTasks(ctx context.Context, scope domain.Scope, spec ports.TaskSpec, count int) ([]domain.TaskID, error) {
	req := createTasksRequest{
		Scope:      scope.String(),
		Experiment: string(spec.Experiment),
		Protocol:   spec.Protocol,
		Settings:   spec.Settings,
		Count:      count,
	}

	var resp createTasksResponse
	if err := c.call(ctx, "create_tasks", http.MethodPost, "/api/v1/tasks", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.TaskIDs) != count {
		return nil, fmt.Errorf("fabric created %d tasks, want %d", len(resp.TaskIDs), count)
	}
	return resp.TaskIDs, nil
}

// QueueTask asks the fabric to actively queue a registered task.
func (c *Client) QueueTask(ctx context.Context, id domain.TaskID) error {
	path := fmt.Sprintf("/api/v1/tasks/%s/queue", id)
	return c.call(ctx, "queue_task", http.MethodPost, path, nil, nil)
}

type statusRequest struct {
	TaskIDs []domain.TaskID `json:"task_ids"`
}

type statusResponse struct {
	Statuses map[domain.TaskID]domain.TaskState `json:"statuses"`
}

// GetStatus returns the fabric's current state for each task. Tasks
// the fabric has not ingested yet are absent from the response.
func (c *Client) GetStatus(ctx context.Context, ids []domain.TaskID) (map[domain.TaskID]domain.TaskState, error) {
	var resp statusResponse
	if err := c.call(ctx, "get_status", http.MethodPost, "/api/v1/tasks/status", statusRequest{TaskIDs: ids}, &resp); err != nil {
		return nil, err
	}
	if resp.Statuses == nil {
		return map[domain.TaskID]domain.TaskState{}, nil
	}
	return resp.Statuses, nil
}

// GetResult fetches the result record of a completed task.
func (c *Client) GetResult(ctx context.Context, id domain.TaskID) (*domain.ResultRecord, error) {
	path := fmt.Sprintf("/api/v1/tasks/%s/result", id)

	var record domain.ResultRecord
	if err := c.call(ctx, "get_result", http.MethodGet, path, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

type restartResponse struct {
	Requeued bool `json:"requeued"`
}

// RestartTask re-queues an errored task. The fabric reports whether
// the task was actually re-queued; a task no longer in the error state
// comes back requeued=false rather than as an error.
func (c *Client) RestartTask(ctx context.Context, id domain.TaskID) (bool, error) {
	path := fmt.Sprintf("/api/v1/tasks/%s/restart", id)

	var resp restartResponse
	if err := c.call(ctx, "restart_task", http.MethodPost, path, nil, &resp); err != nil {
		return false, err
	}
	return resp.Requeued, nil
}

// errorBody is the fabric's error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// call performs one authenticated request/response exchange. Transport
// failures and 5xx responses surface as connectivity errors; 4xx
// responses carry the fabric's own error message.
func (c *Client) call(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()
	err := c.doCall(ctx, method, path, body, out)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "failed"
		if domain.IsConnectivity(err) {
			outcome = "unreachable"
		}
	}
	c.metrics.IncFabricCalls(op, outcome)
	c.metrics.ObserveFabricLatency(op, elapsed)

	if err != nil {
		c.logger.Debug("fabric call failed",
			zap.String("op", op),
			zap.String("path", path),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return err
	}
	return nil
}

func (c *Client) doCall(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Fabric-Identity", c.identity)
	req.Header.Set("X-Fabric-Key", c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewConnectivityError(method+" "+path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return domain.NewConnectivityError(method+" "+path,
			fmt.Errorf("fabric returned %s", resp.Status))
	case resp.StatusCode >= 400:
		return c.decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope errorBody
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Code != "" {
		switch envelope.Error.Code {
		case "TASK_NOT_FOUND":
			return domain.ErrTaskNotFound
		case "RESULT_NOT_READY":
			return domain.ErrResultNotReady
		}
		return fmt.Errorf("fabric rejected request: %s: %s", envelope.Error.Code, envelope.Error.Message)
	}
	return fmt.Errorf("fabric rejected request: %s", resp.Status)
}
