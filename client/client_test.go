package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// newGraphQLServer answers every request with status and body and records
// the last decoded request.
func newGraphQLServer(t *testing.T, status int, body string) (*Client, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/graphql", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		_ = json.NewDecoder(r.Body).Decode(captured)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/graphql", 5*time.Second), captured
}

func TestClient_GetAllTasks(t *testing.T) {
	c, req := newGraphQLServer(t, http.StatusOK, `{"data":{"getAllTasks":[
		{"id":2,"title":"newer","description":null,"status":"COMPLETED","createdAt":"2024-03-01T10:00:00Z","updatedAt":"2024-03-01T11:00:00Z"},
		{"id":1,"title":"older","description":"d","status":"PENDING","createdAt":"2024-03-01T09:00:00Z","updatedAt":null}
	]}}`)

	tasks, err := c.GetAllTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Contains(t, req.Query, "getAllTasks")
	assert.Equal(t, 2, tasks[0].ID)
	assert.Equal(t, StatusCompleted, tasks[0].Status)
	assert.Nil(t, tasks[0].Description)
	require.NotNil(t, tasks[0].UpdatedAt)
	assert.Equal(t, time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC), tasks[0].UpdatedAt.UTC())

	require.NotNil(t, tasks[1].Description)
	assert.Equal(t, "d", *tasks[1].Description)
	assert.Nil(t, tasks[1].UpdatedAt)
}

func TestClient_GetAllTasks_EmptyIsNotNil(t *testing.T) {
	c, _ := newGraphQLServer(t, http.StatusOK, `{"data":{"getAllTasks":[]}}`)

	tasks, err := c.GetAllTasks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestClient_GetTasksByStatus(t *testing.T) {
	c, req := newGraphQLServer(t, http.StatusOK, `{"data":{"getTasksByStatus":[]}}`)

	_, err := c.GetTasksByStatus(context.Background(), StatusPending)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", req.Variables["status"])
}

func TestClient_GetTaskByID_Absent(t *testing.T) {
	c, req := newGraphQLServer(t, http.StatusOK, `{"data":{"getTaskById":null}}`)

	task, err := c.GetTaskByID(context.Background(), 12)
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.Equal(t, float64(12), req.Variables["id"])
}

func TestClient_CreateTask(t *testing.T) {
	c, req := newGraphQLServer(t, http.StatusOK, `{"data":{"createTask":
		{"id":5,"title":"Buy milk","description":null,"status":"PENDING","createdAt":"2024-03-01T09:00:00Z","updatedAt":null}}}`)

	task, err := c.CreateTask(context.Background(), "Buy milk", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, task.ID)

	input, ok := req.Variables["input"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Buy milk", input["title"])
	_, hasDescription := input["description"]
	assert.False(t, hasDescription, "absent description must not be sent")
}

func TestClient_UpdateTaskStatus(t *testing.T) {
	c, req := newGraphQLServer(t, http.StatusOK, `{"data":{"updateTaskStatus":
		{"id":5,"title":"t","description":null,"status":"COMPLETED","createdAt":"2024-03-01T09:00:00Z","updatedAt":"2024-03-01T09:05:00Z"}}}`)

	task, err := c.UpdateTaskStatus(context.Background(), 5, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, task.Status)

	input := req.Variables["input"].(map[string]any)
	assert.Equal(t, float64(5), input["id"])
	assert.Equal(t, "COMPLETED", input["status"])
}

func TestClient_DeleteTask(t *testing.T) {
	c, _ := newGraphQLServer(t, http.StatusOK, `{"data":{"deleteTask":false}}`)

	deleted, err := c.DeleteTask(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestClient_Health(t *testing.T) {
	c, _ := newGraphQLServer(t, http.StatusOK, `{"data":{"health":{"status":"Healthy","timestamp":"2024-03-01T09:00:00Z"}}}`)

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Healthy", h.Status)
}

func TestClient_GraphQLError(t *testing.T) {
	c, _ := newGraphQLServer(t, http.StatusOK, `{"data":null,"errors":[{"message":"Task with ID 9 not found."}]}`)

	_, err := c.UpdateTaskStatus(context.Background(), 9, StatusCompleted)

	var gqlErr *GraphQLError
	require.True(t, errors.As(err, &gqlErr), "got %v", err)
	assert.Equal(t, "Task with ID 9 not found.", gqlErr.Error())
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestClient_TransportErrors(t *testing.T) {
	t.Run("non-success status", func(t *testing.T) {
		c, _ := newGraphQLServer(t, http.StatusBadGateway, `bad gateway`)

		_, err := c.GetAllTasks(context.Background())
		var terr *TransportError
		require.True(t, errors.As(err, &terr), "got %v", err)
		assert.Equal(t, http.StatusBadGateway, terr.StatusCode)
		assert.True(t, errors.Is(err, ErrTransport))
	})

	t.Run("malformed body", func(t *testing.T) {
		c, _ := newGraphQLServer(t, http.StatusOK, `<html>`)

		_, err := c.GetAllTasks(context.Background())
		assert.True(t, errors.Is(err, ErrTransport), "got %v", err)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		endpoint := srv.URL + "/graphql"
		srv.Close()

		_, err := New(endpoint, time.Second).GetAllTasks(context.Background())
		assert.True(t, errors.Is(err, ErrTransport), "got %v", err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		c, _ := newGraphQLServer(t, http.StatusOK, `{"data":{"getAllTasks":[]}}`)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.GetAllTasks(ctx)
		assert.True(t, errors.Is(err, ErrTransport))
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
