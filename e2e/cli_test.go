package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/mogg-backend/internal/api"
	"github.com/mcoot/mogg-backend/internal/factory"
	"github.com/mcoot/mogg-backend/internal/web"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "moggctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/moggctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// Create application with the default in-memory storage
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go app.Rooms.Run(ctx)

	// Create routers
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Rooms:       app.Rooms,
		Leaderboard: app.Leaderboard,
		Profiles:    app.Profiles,
		Storage:     app.Storage,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:      logger,
		Leaderboard: app.Leaderboard,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			cancel()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = server.Shutdown(shutdownCtx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type createRoomResponse struct {
	Passcode string `json:"passcode"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type leaderboardEntry struct {
	PlayerName string `json:"playerName"`
	Score      int64  `json:"score"`
}

func decodeOutput[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestCLIRoomFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	ts := startTestServer(t)
	defer ts.shutdown()
	cli := newCLIRunner(t, ts.addr)

	out, err := cli.run("health")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"ok"`)

	out, err = cli.run("room", "create", "--user", "Bob")
	require.NoError(t, err, out)
	code := decodeOutput[createRoomResponse](t, out).Passcode
	require.Len(t, code, 5)

	out, err = cli.run("room", "submit", code, "--player", "Bob", "--score", "10")
	require.NoError(t, err, out)
	assert.Equal(t, "submitted", decodeOutput[messageResponse](t, out).Message)

	out, err = cli.run("room", "submit", code, "--player", "Bob", "--score", "5")
	require.NoError(t, err, out)
	assert.Equal(t, "updated", decodeOutput[messageResponse](t, out).Message)

	out, err = cli.run("room", "submit", code, "--player", "Carl", "--score", "7")
	require.NoError(t, err, out)

	out, err = cli.run("room", "submit", code, "--player", "Carl", "--score", "9")
	require.Error(t, err)
	assert.Contains(t, out, "ALREADY_PLAYED")

	out, err = cli.run("room", "leaderboard", code)
	require.NoError(t, err, out)
	assert.Equal(t, []leaderboardEntry{
		{PlayerName: "Bob", Score: 10},
		{PlayerName: "Carl", Score: 7},
	}, decodeOutput[[]leaderboardEntry](t, out))

	out, err = cli.run("room", "destroy", code, "--user", "Carl")
	require.Error(t, err)
	assert.Contains(t, out, "UNAUTHORIZED")

	out, err = cli.run("room", "destroy", code, "--user", "Bob")
	require.NoError(t, err, out)

	out, err = cli.run("room", "get", code)
	require.Error(t, err)
	assert.Contains(t, out, "ROOM_EXPIRED")
}

func TestCLIGlobalAndProfiles(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	ts := startTestServer(t)
	defer ts.shutdown()
	cli := newCLIRunner(t, ts.addr)

	for _, args := range [][]string{
		{"score", "submit", "--player", "Alice", "--score", "5"},
		{"score", "submit", "--player", "alice", "--score", "9"},
		{"score", "submit", "--player", "ALICE", "--score", "3"},
	} {
		out, err := cli.run(args...)
		require.NoError(t, err, out)
	}

	out, err := cli.run("score", "top")
	require.NoError(t, err, out)
	assert.Equal(t, []leaderboardEntry{{PlayerName: "Alice", Score: 9}}, decodeOutput[[]leaderboardEntry](t, out))

	out, err = cli.run("user", "anon")
	require.NoError(t, err, out)
	assert.True(t, strings.HasPrefix(decodeOutput[struct {
		Username string `json:"username"`
	}](t, out).Username, "AnonMogg_"))

	out, err = cli.run("user", "guest", "Zoë")
	require.NoError(t, err, out)

	out, err = cli.run("user", "sync", "zoë", "--coins", "20")
	require.NoError(t, err, out)

	out, err = cli.run("user", "get", "ZOË")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"coins": 20`)
}
