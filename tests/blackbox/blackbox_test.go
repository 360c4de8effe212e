package blackbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) (int, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil { t.Fatalf("listen: %v", err) }
	port := ln.Addr().(*net.TCPAddr).Port
	return port, func() { _ = ln.Close() }
}

func projectRootFromThisFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok { t.Fatal("runtime.Caller failed") }
	// this file: <root>/tests/blackbox/blackbox_test.go
	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

func buildBinary(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "hubd")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/hubd")
	cmd.Dir = projectRootFromThisFile(t)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(out))
	}
	return binPath
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "hubd.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

type serverProc struct {
	cmd  *exec.Cmd
	base string // http base URL, e.g. http://127.0.0.1:18123
}

func startServer(t *testing.T, bin, configPath string, port int) *serverProc {
	t.Helper()
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	args := []string{"serve", "--addr", fmt.Sprintf("127.0.0.1:%d", port), "--log-level", "error"}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() { _ = cmd.Process.Kill(); _ = cmd.Wait() })
	// Wait for readyz: bootstrap has finished once it answers 200.
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(base + "/readyz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK { break }
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not become ready in time")
		}
		time.Sleep(50 * time.Millisecond)
	}
	return &serverProc{cmd: cmd, base: base}
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil { t.Fatalf("new req: %v", err) }
	resp, err := http.DefaultClient.Do(req)
	if err != nil { t.Fatalf("do: %v", err) }
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func postJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil { t.Fatalf("new req: %v", err) }
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil { t.Fatalf("do: %v", err) }
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

const hubConfig = `
components:
  hub:
    devices:
      - id: d1
        name: Kitchen
        platform: hue
`

func TestBlackbox_Flow(t *testing.T) {
	bin := buildBinary(t)
	port, release := findFreePort(t)
	release()
	sp := startServer(t, bin, writeConfig(t, hubConfig), port)

	resp, body := get(t, sp.base+"/healthz")
	if resp.StatusCode != http.StatusOK { t.Fatalf("/healthz %d %s", resp.StatusCode, string(body)) }

	// The hub pulls in light and notify through discovery; poll until both show up.
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, body = get(t, sp.base+"/components")
		if resp.StatusCode != http.StatusOK { t.Fatalf("/components %d %s", resp.StatusCode, string(body)) }
		var comps struct{ Components []string `json:"components"` }
		if err := json.Unmarshal(body, &comps); err != nil { t.Fatalf("/components json: %v body=%s", err, string(body)) }
		if strings.Join(comps.Components, ",") == "hub,light,notify" { break }
		if time.Now().After(deadline) { t.Fatalf("components=%v", comps.Components) }
		time.Sleep(25 * time.Millisecond)
	}

	resp, body = postJSON(t, sp.base+"/platforms", []byte(`{"component":"light","platform":"zigbee"}`))
	if resp.StatusCode != http.StatusOK { t.Fatalf("/platforms %d %s", resp.StatusCode, string(body)) }

	resp, body = get(t, sp.base+"/status")
	if resp.StatusCode != http.StatusOK { t.Fatalf("/status %d %s", resp.StatusCode, string(body)) }
	var st struct {
		State      string `json:"state"`
		Components []struct{ Name, State string } `json:"components"`
	}
	if err := json.Unmarshal(body, &st); err != nil { t.Fatalf("/status json: %v body=%s", err, string(body)) }
	if st.State != "ready" || len(st.Components) != 3 { t.Fatalf("unexpected status: %s", string(body)) }

	resp, body = get(t, sp.base+"/metrics")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte("hubd_discovery_announcements_total")) {
		t.Fatalf("/metrics missing discovery counters")
	}
}

func TestBlackbox_ForbiddenComponent_403(t *testing.T) {
	bin := buildBinary(t)
	port, release := findFreePort(t)
	release()
	sp := startServer(t, bin, writeConfig(t, hubConfig), port)

	resp, body := postJSON(t, sp.base+"/discover", []byte(`{"service":"x","component":"config"}`))
	if resp.StatusCode != http.StatusForbidden { t.Fatalf("expected 403, got %d, body=%s", resp.StatusCode, string(body)) }
}

func TestBlackbox_NoConfig_PlatformRequired_400(t *testing.T) {
	bin := buildBinary(t)
	port, release := findFreePort(t)
	release()
	sp := startServer(t, bin, "", port)

	resp, body := postJSON(t, sp.base+"/platforms", []byte(`{"component":"light"}`))
	if resp.StatusCode != http.StatusBadRequest { t.Fatalf("expected 400, got %d, body=%s", resp.StatusCode, string(body)) }

	// Defaults make the host config non-empty, so a full request activates light.
	resp, body = postJSON(t, sp.base+"/platforms", []byte(`{"component":"light","platform":"hue"}`))
	if resp.StatusCode != http.StatusOK { t.Fatalf("expected 200, got %d, body=%s", resp.StatusCode, string(body)) }
	if !bytes.Contains(body, []byte(`"component_active":true`)) { t.Fatalf("body=%s", string(body)) }
}
