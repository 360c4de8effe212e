package discovery

import (
	"context"
	"sync"
	"testing"
	"time"

	"hubd/internal/bus"
	"hubd/internal/config"
	"hubd/internal/loop"
)

var testCfg = &config.Config{Components: map[string]config.Section{"hub": {}}}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

// fakeActivator records activation calls and answers with result.
type fakeActivator struct {
	mu     sync.Mutex
	active map[string]bool
	calls  map[string]int
	result bool
	// onActivate runs before the activation result is recorded.
	onActivate func(name string)
}

func newFakeActivator(result bool, active ...string) *fakeActivator {
	f := &fakeActivator{active: map[string]bool{}, calls: map[string]int{}, result: result}
	for _, a := range active {
		f.active[a] = true
	}
	return f
}

func (f *fakeActivator) IsActive(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active[name]
}

func (f *fakeActivator) Activate(ctx context.Context, name string, cfg *config.Config) bool {
	if f.onActivate != nil {
		f.onActivate(name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	if f.result {
		f.active[name] = true
	}
	return f.result
}

func (f *fakeActivator) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

type harness struct {
	loop *loop.Loop
	bus  *bus.Bus
	act  *fakeActivator
	d    *Discovery
}

func newHarness(t *testing.T, act *fakeActivator) *harness {
	t.Helper()
	l := loop.New()
	l.Start()
	t.Cleanup(func() { _ = l.Stop(context.Background()) })
	b := bus.New(l)
	return &harness{loop: l, bus: b, act: act, d: New(l, b, act)}
}

// settle waits until every queued job and task has finished.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	if err := h.loop.Wait(testCtx(t)); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

type delivery struct {
	name       string
	discovered Info
}

// collector gathers callback invocations from any goroutine.
type collector struct {
	mu  sync.Mutex
	got []delivery
}

func (c *collector) service(_ context.Context, service string, discovered Info) {
	c.mu.Lock()
	c.got = append(c.got, delivery{service, discovered})
	c.mu.Unlock()
}

func (c *collector) platform(_ context.Context, platform string, discovered Info) {
	c.mu.Lock()
	c.got = append(c.got, delivery{platform, discovered})
	c.mu.Unlock()
}

func (c *collector) all() []delivery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]delivery(nil), c.got...)
}
