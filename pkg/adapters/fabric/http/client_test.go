package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/aescanero/alquimia/pkg/adapters/metrics/noop"
	"github.com/aescanero/alquimia/pkg/domain"
	"github.com/aescanero/alquimia/pkg/ports"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		BaseURL:  server.URL,
		Identity: "test-identity",
		Secret:   "test-secret",
		Metrics:  noop.NewCollector(),
		Logger:   zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client, server
}

func TestNewClientRequiresCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no base URL", Config{Identity: "id", Secret: "key"}},
		{"no identity", Config{BaseURL: "https://fabric.test", Secret: "key"}},
		{"no secret", Config{BaseURL: "https://fabric.test", Identity: "id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(&tt.cfg); err == nil {
				t.Error("want configuration error")
			}
		})
	}
}

func TestCreateTasksSendsAuthHeaders(t *testing.T) {
	var gotIdentity, gotKey string
	var gotBody createTasksRequest

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity = r.Header.Get("X-Fabric-Identity")
		gotKey = r.Header.Get("X-Fabric-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(createTasksResponse{TaskIDs: []domain.TaskID{"t1", "t2", "t3"}})
	}))

	scope := domain.Scope{Org: "openff", Campaign: "sage21", Project: "solvation"}
	spec := ports.TaskSpec{Experiment: "experiment-aaaa", Protocol: "absolute_solvation"}
	ids, err := client.CreateTasks(context.Background(), scope, spec, 3)
	if err != nil {
		t.Fatalf("failed to create tasks: %v", err)
	}

	if len(ids) != 3 {
		t.Errorf("task count = %d, want 3", len(ids))
	}
	if gotIdentity != "test-identity" || gotKey != "test-secret" {
		t.Errorf("auth headers = (%q, %q)", gotIdentity, gotKey)
	}
	if gotBody.Scope != "openff-sage21-solvation" {
		t.Errorf("scope = %q, want serialized form", gotBody.Scope)
	}
	if gotBody.Count != 3 || gotBody.Experiment != "experiment-aaaa" {
		t.Errorf("request body = %+v", gotBody)
	}
}

func TestCreateTasksRejectsShortResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(createTasksResponse{TaskIDs: []domain.TaskID{"t1"}})
	}))

	scope := domain.Scope{Org: "openff", Campaign: "sage21", Project: "solvation"}
	_, err := client.CreateTasks(context.Background(), scope, ports.TaskSpec{}, 3)
	if err == nil {
		t.Fatal("want error for partial task creation")
	}
	if domain.IsConnectivity(err) {
		t.Errorf("partial creation is not a connectivity failure: %v", err)
	}
}

func TestServerErrorsAreConnectivity(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusBadGateway)
	}))

	err := client.QueueTask(context.Background(), "t1")
	if !domain.IsConnectivity(err) {
		t.Errorf("5xx should surface as connectivity error, got %v", err)
	}
}

func TestTransportFailureIsConnectivity(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := client.GetStatus(context.Background(), []domain.TaskID{"t1"})
	if !domain.IsConnectivity(err) {
		t.Errorf("transport failure should surface as connectivity error, got %v", err)
	}
}

func TestErrorCodeMapping(t *testing.T) {
	writeError := func(w http.ResponseWriter, status int, code string) {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": code, "message": "details"},
		})
	}

	t.Run("task not found", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "TASK_NOT_FOUND")
		}))
		_, err := client.RestartTask(context.Background(), "missing")
		if !errors.Is(err, domain.ErrTaskNotFound) {
			t.Errorf("want ErrTaskNotFound, got %v", err)
		}
	})

	t.Run("result not ready", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusConflict, "RESULT_NOT_READY")
		}))
		_, err := client.GetResult(context.Background(), "t1")
		if !errors.Is(err, domain.ErrResultNotReady) {
			t.Errorf("want ErrResultNotReady, got %v", err)
		}
	})

	t.Run("other 4xx carries the fabric message", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusUnprocessableEntity, "BAD_PROTOCOL")
		}))
		err := client.QueueTask(context.Background(), "t1")
		if err == nil || domain.IsConnectivity(err) {
			t.Errorf("4xx should surface as a plain error, got %v", err)
		}
	})
}

func TestRestartTaskReportsRequeued(t *testing.T) {
	requeued := true
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(restartResponse{Requeued: requeued})
	}))

	ok, err := client.RestartTask(context.Background(), "t1")
	if err != nil || !ok {
		t.Errorf("restart = (%v, %v), want (true, nil)", ok, err)
	}

	requeued = false
	ok, err = client.RestartTask(context.Background(), "t1")
	if err != nil || ok {
		t.Errorf("restart of non-errored task = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestGetStatusEmptyResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(statusResponse{})
	}))

	states, err := client.GetStatus(context.Background(), []domain.TaskID{"t1"})
	if err != nil {
		t.Fatalf("failed to get status: %v", err)
	}
	if states == nil {
		t.Error("status map should be empty, not nil")
	}
}
