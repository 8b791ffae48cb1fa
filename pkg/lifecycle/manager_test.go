package lifecycle

import (
	"testing"
	"time"
)

func TestManagerStopsServices(t *testing.T) {
	m := NewManager()

	stopped := make(chan string, 2)
	for _, name := range []string{"a", "b"} {
		err := m.Go(name, func(h *Handle) {
			for {
				if err := h.Sleep(time.Hour); err != nil {
					stopped <- h.Name()
					return
				}
			}
		})
		if err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	m.Shutdown()
	if remaining := m.WaitWithTimeout(time.Second); len(remaining) != 0 {
		t.Fatalf("services did not stop: %v", remaining)
	}
	if len(stopped) != 2 {
		t.Fatalf("expected both services to observe shutdown, got %d", len(stopped))
	}
}

func TestManagerRejectsDuplicateAndLateRegistration(t *testing.T) {
	m := NewManager()
	block := make(chan struct{})
	defer close(block)

	if err := m.Go("checker", func(h *Handle) { <-block }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Go("checker", func(h *Handle) {}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}

	m.Shutdown()
	if err := m.Go("late", func(h *Handle) {}); err == nil {
		t.Fatalf("expected registration after shutdown to fail")
	}
}

func TestManagerReportsStuckServices(t *testing.T) {
	m := NewManager()
	block := make(chan struct{})
	defer close(block)

	if err := m.Go("stuck", func(h *Handle) { <-block }); err != nil {
		t.Fatalf("register: %v", err)
	}
	m.Shutdown()

	remaining := m.WaitWithTimeout(20 * time.Millisecond)
	if len(remaining) != 1 || remaining[0] != "stuck" {
		t.Fatalf("expected stuck service to be reported, got %v", remaining)
	}
}
