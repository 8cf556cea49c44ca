package events

import "testing"

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish("one")

	for _, ch := range []chan string{a, b} {
		select {
		case got := <-ch:
			if got != "one" {
				t.Fatalf("got %q, want one", got)
			}
		default:
			t.Fatal("subscriber missed the event")
		}
	}
}

func TestHubDropsWhenSlow(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	// Fill the buffer and keep publishing; Publish must never block.
	for i := 0; i < 100; i++ {
		h.Publish("evt")
	}
	if n := len(ch); n != cap(ch) {
		t.Fatalf("buffered %d events, want the full %d", n, cap(ch))
	}
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	// Channel is closed and no longer receives.
	if _, open := <-ch; open {
		t.Fatal("channel still open after unsubscribe")
	}
	h.Publish("after") // must not panic on the removed client
}
