package events

import "testing"

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe()
	defer cancelA()
	b, cancelB := h.Subscribe()
	defer cancelB()

	h.Publish(Availability{BookID: 7, Available: true})

	for _, ch := range []<-chan Availability{a, b} {
		select {
		case ev := <-ch:
			if ev.BookID != 7 || !ev.Available {
				t.Fatalf("unexpected event %+v", ev)
			}
		default:
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestPublishDropsWhenSubscriberIsFull(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	// One more than the channel buffer; the last publish must not block.
	for i := 0; i < 17; i++ {
		h.Publish(Availability{BookID: int64(i)})
	}

	if got := len(ch); got != 16 {
		t.Fatalf("buffered %d events; want 16", got)
	}
}

func TestCancelClosesChannelAndRemovesSubscriber(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	if h.SubscriberCount() != 1 {
		t.Fatalf("subscriber count = %d; want 1", h.SubscriberCount())
	}

	cancel()
	cancel() // idempotent

	if h.SubscriberCount() != 0 {
		t.Fatalf("subscriber count after cancel = %d; want 0", h.SubscriberCount())
	}
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after cancel")
	}

	// Publishing after cancel must not panic or deliver.
	h.Publish(Availability{BookID: 1})
}
