package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

const taskJSON = `{"id":7,"title":"Buy milk","description":"2%","status":"PENDING","createdAt":"2024-03-01T09:00:00Z","updatedAt":null}`

// newServer answers every GraphQL request with body and records the
// requests it received.
func newServer(t *testing.T, body string) (string, *[]graphqlRequest) {
	t.Helper()
	var received []graphqlRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		received = append(received, req)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/graphql", &received
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TODO_ENDPOINT", "")
	t.Setenv("TODO_TIMEOUT", "")

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Registration(t *testing.T) {
	names := map[string]bool{}
	for _, c := range NewRootCommand().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"list", "get", "add", "edit", "done", "reopen", "rm", "health", "ui", "version"} {
		assert.True(t, names[want], "expected %q command to be registered", want)
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.3", "abc", "today")
	t.Cleanup(func() { SetVersionInfo("dev", "none", "unknown") })

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "todoctl 1.2.3")
	assert.Contains(t, out, "commit: abc")
}

func TestListCommand(t *testing.T) {
	endpoint, received := newServer(t, `{"data":{"getAllTasks":[`+taskJSON+`,
		{"id":3,"title":"Old","description":null,"status":"COMPLETED","createdAt":"2024-02-01T09:00:00Z","updatedAt":null}]}}`)

	out, err := execute(t, "list", "--endpoint", endpoint)
	require.NoError(t, err)
	assert.Contains(t, out, "   7 [ ] Buy milk  (2%)")
	assert.Contains(t, out, "   3 [x] Old\n")
	require.Len(t, *received, 1)
	assert.Contains(t, (*received)[0].Query, "getAllTasks")
}

func TestListCommand_ByStatus(t *testing.T) {
	endpoint, received := newServer(t, `{"data":{"getTasksByStatus":[]}}`)

	out, err := execute(t, "list", "--status", "Completed", "--endpoint", endpoint)
	require.NoError(t, err)
	assert.Equal(t, "No tasks.\n", out)
	require.Len(t, *received, 1)
	assert.Equal(t, "COMPLETED", (*received)[0].Variables["status"])
}

func TestListCommand_UnknownStatus(t *testing.T) {
	endpoint, received := newServer(t, `{}`)

	_, err := execute(t, "list", "--status", "archived", "--endpoint", endpoint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown status "archived"`)
	assert.Empty(t, *received)
}

func TestGetCommand(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		endpoint, _ := newServer(t, `{"data":{"getTaskById":`+taskJSON+`}}`)

		out, err := execute(t, "get", "7", "--endpoint", endpoint)
		require.NoError(t, err)
		assert.Contains(t, out, "Title:       Buy milk")
		assert.Contains(t, out, "Description: 2%")
		assert.NotContains(t, out, "Updated:")
	})

	t.Run("absent", func(t *testing.T) {
		endpoint, _ := newServer(t, `{"data":{"getTaskById":null}}`)

		_, err := execute(t, "get", "99", "--endpoint", endpoint)
		require.Error(t, err)
		assert.Equal(t, "task 99 not found", err.Error())
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := execute(t, "get", "abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid task id")
	})
}

func TestAddCommand(t *testing.T) {
	endpoint, received := newServer(t, `{"data":{"createTask":`+taskJSON+`}}`)

	out, err := execute(t, "add", "Buy", "milk", "-d", "2%", "--endpoint", endpoint)
	require.NoError(t, err)
	assert.Equal(t, "Created task 7: Buy milk\n", out)

	require.Len(t, *received, 1)
	input := (*received)[0].Variables["input"].(map[string]any)
	assert.Equal(t, "Buy milk", input["title"])
	assert.Equal(t, "2%", input["description"])
}

func TestAddCommand_BlankTitleIsNotSent(t *testing.T) {
	endpoint, received := newServer(t, `{}`)

	_, err := execute(t, "add", "   ", "--endpoint", endpoint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
	assert.Empty(t, *received)
}

func TestEditCommand(t *testing.T) {
	endpoint, received := newServer(t, `{"data":{"updateTask":`+taskJSON+`}}`)

	out, err := execute(t, "edit", "7", "--title", "Buy milk", "--endpoint", endpoint)
	require.NoError(t, err)
	assert.Equal(t, "Updated task 7: Buy milk\n", out)

	require.Len(t, *received, 1)
	assert.Equal(t, float64(7), (*received)[0].Variables["id"])
	input := (*received)[0].Variables["input"].(map[string]any)
	_, hasDescription := input["description"]
	assert.False(t, hasDescription)
}

func TestEditCommand_RequiresTitle(t *testing.T) {
	_, err := execute(t, "edit", "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"title" not set`)
}

func TestStatusCommands(t *testing.T) {
	tests := []struct {
		command string
		status  string
	}{
		{"done", "COMPLETED"},
		{"reopen", "PENDING"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			endpoint, received := newServer(t, `{"data":{"updateTaskStatus":
				{"id":7,"title":"Buy milk","description":null,"status":"`+tt.status+`","createdAt":"2024-03-01T09:00:00Z","updatedAt":"2024-03-01T09:05:00Z"}}}`)

			out, err := execute(t, tt.command, "7", "--endpoint", endpoint)
			require.NoError(t, err)
			assert.Contains(t, out, "Buy milk")

			input := (*received)[0].Variables["input"].(map[string]any)
			assert.Equal(t, tt.status, input["status"])
		})
	}
}

func TestStatusCommand_NotFound(t *testing.T) {
	endpoint, _ := newServer(t, `{"data":null,"errors":[{"message":"Task with ID 9 not found."}]}`)

	_, err := execute(t, "done", "9", "--endpoint", endpoint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Task with ID 9 not found.")
}

func TestRemoveCommand(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"data":{"deleteTask":true}}`, "Deleted task 7\n"},
		{`{"data":{"deleteTask":false}}`, "Task 7 did not exist\n"},
	}

	for _, tt := range tests {
		endpoint, _ := newServer(t, tt.body)
		out, err := execute(t, "rm", "7", "--endpoint", endpoint)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out)
	}
}

func TestHealthCommand(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		endpoint, _ := newServer(t, `{"data":{"health":{"status":"Healthy","timestamp":"2024-03-01T09:00:00Z"}}}`)

		out, err := execute(t, "health", "--endpoint", endpoint)
		require.NoError(t, err)
		assert.Equal(t, "Healthy (2024-03-01T09:00:00Z)\n", out)
	})

	t.Run("unhealthy", func(t *testing.T) {
		endpoint, _ := newServer(t, `{"data":{"health":{"status":"Unhealthy","timestamp":"2024-03-01T09:00:00Z"}}}`)

		_, err := execute(t, "health", "--endpoint", endpoint)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Unhealthy")
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		endpoint := srv.URL + "/graphql"
		srv.Close()

		_, err := execute(t, "health", "--endpoint", endpoint, "--timeout", "1s")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "transport error")
	})
}

func TestConfigFile(t *testing.T) {
	endpoint, received := newServer(t, `{"data":{"getAllTasks":[]}}`)

	path := filepath.Join(t.TempDir(), "todoctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: "+endpoint+"\ntimeout: 2s\n"), 0o600))

	_, err := execute(t, "list", "--config", path)
	require.NoError(t, err)
	assert.Len(t, *received, 1)
}

func TestEndpointFromEnv(t *testing.T) {
	endpoint, received := newServer(t, `{"data":{"getAllTasks":[]}}`)

	t.Setenv("HOME", t.TempDir())
	t.Setenv("TODO_ENDPOINT", endpoint)

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"list"})
	require.NoError(t, cmd.Execute())
	assert.Len(t, *received, 1)
}
