//go:build integration
// +build integration

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// fakeLastFM serves user.getinfo and user.gettopalbums. Each chart request
// adds one play to the top album.
func fakeLastFM(t *testing.T) *httptest.Server {
	t.Helper()

	var plays atomic.Int64
	plays.Store(10)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("method") {
		case "user.getinfo":
			fmt.Fprint(w, `{"user":{"name":"alice","url":"https://www.last.fm/user/alice","playcount":"500","image":[]}}`)
		case "user.gettopalbums":
			fmt.Fprintf(w, `{"topalbums":{"album":[
				{"name":"In Rainbows","url":"https://www.last.fm/music/Radiohead/In+Rainbows","playcount":"%d",
				 "artist":{"name":"Radiohead","url":"https://www.last.fm/music/Radiohead"},"image":[],"@attr":{"rank":"1"}}
			]}}`, plays.Add(1)-1)
		default:
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":3,"message":"Invalid Method"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func buildBinary(t *testing.T) string {
	t.Helper()

	bin := filepath.Join(t.TempDir(), "chartfm_test")
	buildCmd := exec.Command("go", "build", "-o", bin, ".")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build binary: %v\n%s", err, out)
	}
	return bin
}

func testEnv(t *testing.T, baseURL string) []string {
	return append(os.Environ(),
		"HOME="+t.TempDir(),
		"CHARTFM_LASTFM_API_KEY=test_key",
		"CHARTFM_LASTFM_BASE_URL="+baseURL+"/",
	)
}

// TestChartCommand runs the same chart twice and checks the second run
// reports the change since the first
func TestChartCommand(t *testing.T) {
	bin := buildBinary(t)
	api := fakeLastFM(t)
	env := testEnv(t, api.URL)
	dataDir := t.TempDir()

	run := func() map[string]any {
		cmd := exec.Command(bin, "chart", "alice", "--output", "json", "--data-dir", dataDir, "--log-level", "error")
		cmd.Env = env
		out, err := cmd.Output()
		if err != nil {
			t.Fatalf("chart command failed: %v\n%s", err, out)
		}
		var doc map[string]any
		if err := json.Unmarshal(out, &doc); err != nil {
			t.Fatalf("invalid json output: %v\n%s", err, out)
		}
		return doc
	}

	delta := func(doc map[string]any) map[string]any {
		items := doc["items"].([]any)
		return items[0].(map[string]any)["delta"].(map[string]any)
	}

	first := run()
	if got := delta(first)["status"]; got != "new" {
		t.Errorf("first run status = %v, want new", got)
	}

	second := run()
	if got := delta(second)["status"]; got != "changed" {
		t.Errorf("second run status = %v, want changed", got)
	}
	if got := delta(second)["change"]; got != float64(1) {
		t.Errorf("second run change = %v, want 1", got)
	}

	if _, err := os.Stat(filepath.Join(dataDir, "chartfm.db")); err != nil {
		t.Errorf("snapshot database not created: %v", err)
	}
}

// TestServeLifecycle starts the server, requests the form and stops it
func TestServeLifecycle(t *testing.T) {
	bin := buildBinary(t)
	api := fakeLastFM(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to reserve port: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, "serve",
		"--addr", addr,
		"--data-dir", t.TempDir(),
		"--log-level", "debug")
	cmd.Env = testEnv(t, api.URL)
	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/chart?username=alice")
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("Server did not come up: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /chart status = %d, want 200", resp.StatusCode)
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		t.Fatalf("Failed to signal server: %v", err)
	}

	done := make(chan error)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Server exited with error: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Error("Server did not stop within 15 seconds")
	}
}
