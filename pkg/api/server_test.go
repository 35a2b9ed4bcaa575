package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qgramjoin/simjoin/pkg/api"
)

func writeCSV(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

// freePort asks the OS for an ephemeral port and immediately releases
// it, so Server.Start (which only accepts a port number) can bind it.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find free port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func startTestServer(t *testing.T) (baseURL string, shutdown func()) {
	t.Helper()
	port := freePort(t)
	srv := api.NewServer()

	go func() {
		_ = srv.Start(port)
	}()

	baseURL = fmt.Sprintf("http://127.0.0.1:%d", port)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if resp, err := http.Get(baseURL + "/api/v1/health"); err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	return baseURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func TestHealthEndpointReportsHealthy(t *testing.T) {
	baseURL, shutdown := startTestServer(t)
	defer shutdown()

	resp, err := http.Get(baseURL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET /api/v1/health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", body["status"])
	}
}

func TestJoinEndpointReturnsAssembledRows(t *testing.T) {
	baseURL, shutdown := startTestServer(t)
	defer shutdown()

	leftPath := writeCSV(t, "id,join\nl0,cat\n")
	rightPath := writeCSV(t, "id,join\nr0,bat\n")

	req := api.JoinRequest{
		LeftPath: leftPath, RightPath: rightPath,
		LKeyAttr: "id", RKeyAttr: "id",
		LJoinAttr: "join", RJoinAttr: "join",
		Threshold: 1,
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(baseURL+"/api/v1/join", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/v1/join: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out api.JoinResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success || len(out.Rows) != 1 {
		t.Fatalf("JoinResponse = %+v, want one successful row", out)
	}
	if out.Rows[0]["l_id"] != "l0" || out.Rows[0]["r_id"] != "r0" {
		t.Errorf("Rows[0] = %v, unexpected", out.Rows[0])
	}
}

func TestJoinEndpointRejectsMissingLeftPath(t *testing.T) {
	baseURL, shutdown := startTestServer(t)
	defer shutdown()

	req := api.JoinRequest{
		LeftPath: "/nonexistent/left.csv", RightPath: "/nonexistent/right.csv",
		LKeyAttr: "id", RKeyAttr: "id",
		LJoinAttr: "join", RJoinAttr: "join",
		Threshold: 1,
	}
	body, _ := json.Marshal(req)

	resp, err := http.Post(baseURL+"/api/v1/join", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/v1/join: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
