package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"sync"
	"testing"

	"hubd/internal/components"
	"hubd/internal/config"
	"hubd/internal/discovery"
	"hubd/internal/host"
	"hubd/internal/setup"
	"hubd/pkg/types"
)

func TestE2E_HubBootstrapAndStatus(t *testing.T) {
	cfg := &config.Config{Components: map[string]config.Section{
		components.HubName: {
			"devices": []any{
				map[string]any{"id": "d1", "platform": "hue"},
				map[string]any{"id": "d2", "platform": "zigbee"},
			},
			"bridges": []any{"mqtt"},
		},
	}}
	srv, h := newServer(t, cfg)
	waitReady(t, srv.URL)
	settle(t, h)

	resp, body := httpGet(t, srv.URL+"/components")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/components %d %s", resp.StatusCode, body)
	}
	var comps types.ComponentsResponse
	if err := json.Unmarshal(body, &comps); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !reflect.DeepEqual(comps.Components, []string{"hub", "light", "notify"}) {
		t.Fatalf("components=%v", comps.Components)
	}

	_, body = httpGet(t, srv.URL+"/status")
	var st types.StatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("json: %v", err)
	}
	if st.State != host.StateReady {
		t.Fatalf("state=%s", st.State)
	}
	for _, c := range st.Components {
		if c.State != string(setup.StateLoaded) {
			t.Fatalf("component %s state=%s", c.Name, c.State)
		}
	}
	if got := len(h.Builtins().Light.Platforms()); got != 2 {
		t.Fatalf("light platforms=%d", got)
	}
	if got := h.Builtins().Hub.Bridges(); !reflect.DeepEqual(got, []string{"mqtt"}) {
		t.Fatalf("bridges=%v", got)
	}
}

func TestE2E_ExternalAnnouncements(t *testing.T) {
	srv, h := newServer(t, &config.Config{Components: map[string]config.Section{components.NotifyName: {}}})
	waitReady(t, srv.URL)

	var mu sync.Mutex
	var got []discovery.Info
	if err := h.Discovery().Listen(context.Background(), []string{"printer_found"}, func(_ context.Context, _ string, d discovery.Info) {
		mu.Lock()
		got = append(got, d)
		mu.Unlock()
	}); err != nil {
		t.Fatalf("listen: %v", err)
	}

	resp, body := httpPostJSON(t, srv.URL+"/discover", types.DiscoverRequest{Service: "printer_found"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/discover %d %s", resp.StatusCode, body)
	}
	resp, body = httpPostJSON(t, srv.URL+"/discover", types.DiscoverRequest{Service: "printer_found", Discovered: map[string]any{}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/discover %d %s", resp.StatusCode, body)
	}
	resp, body = httpPostJSON(t, srv.URL+"/platforms", types.LoadPlatformRequest{Component: components.LightName, Platform: "hue"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/platforms %d %s", resp.StatusCode, body)
	}
	settle(t, h)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("deliveries=%d", len(got))
	}
	absent, empty := 0, 0
	for _, d := range got {
		if d == nil {
			absent++
		} else if len(d) == 0 {
			empty++
		}
	}
	if absent != 1 || empty != 1 {
		t.Fatalf("absent and empty payloads must stay distinct: %+v", got)
	}
	if !h.Setup().IsActive(components.LightName) {
		t.Fatalf("light should have been activated by /platforms")
	}
}

func TestE2E_ForbiddenComponent(t *testing.T) {
	srv, _ := newServer(t, &config.Config{Components: map[string]config.Section{components.NotifyName: {}}})
	waitReady(t, srv.URL)
	resp, body := httpPostJSON(t, srv.URL+"/platforms", types.LoadPlatformRequest{Component: "config", Platform: "x"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d %s", resp.StatusCode, body)
	}
}

func TestE2E_NoConfigIsPrecondition(t *testing.T) {
	srv, _ := newServer(t, nil)
	waitReady(t, srv.URL)
	resp, body := httpPostJSON(t, srv.URL+"/platforms", types.LoadPlatformRequest{Component: components.LightName, Platform: "hue"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", resp.StatusCode, body)
	}
}
