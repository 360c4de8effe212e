package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hubd/internal/config"
	"hubd/internal/host"
	"hubd/internal/httpapi"
)

// newServer starts a host for cfg behind an httptest server.
func newServer(t *testing.T, cfg *config.Config, opts ...host.Option) (*httptest.Server, *host.Host) {
	t.Helper()
	h, err := host.New(cfg, opts...)
	if err != nil {
		t.Fatalf("host.New: %v", err)
	}
	h.Start()
	t.Cleanup(func() { _ = h.Stop(context.Background()) })
	srv := httptest.NewServer(httpapi.NewMux(h))
	t.Cleanup(srv.Close)
	return srv, h
}

func waitReady(t *testing.T, base string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, _ := httpGet(t, base+"/readyz")
		if resp.StatusCode == http.StatusOK {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("/readyz did not become ready; last=%d", resp.StatusCode)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// settle waits until the host loop has no queued jobs or running tasks.
func settle(t *testing.T, h *host.Host) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.Loop().Wait(ctx); err != nil {
		t.Fatalf("loop did not settle: %v", err)
	}
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func httpPostJSON(t *testing.T, url string, v any) (*http.Response, []byte) {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}
