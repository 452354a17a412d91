package service

import "testing"

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	a, b := bus.Subscribe(), bus.Subscribe()

	bus.Publish(Event{Feed: FeedLocations, Count: 4})
	for _, ch := range []chan Event{a, b} {
		ev := <-ch
		if ev.Feed != FeedLocations || ev.Count != 4 {
			t.Fatalf("event = %+v", ev)
		}
	}

	bus.Unsubscribe(a)
	if _, ok := <-a; ok {
		t.Fatal("unsubscribed channel still open")
	}
	bus.Unsubscribe(a) // second call is a no-op

	bus.Publish(Event{Feed: FeedCategories})
	if ev := <-b; ev.Feed != FeedCategories {
		t.Fatalf("event = %+v", ev)
	}
}

func TestEventBusDropsWhenFull(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe()
	for i := 0; i < cap(ch)+5; i++ {
		bus.Publish(Event{Feed: FeedLocations, Count: i})
	}
	if len(ch) != cap(ch) {
		t.Fatalf("buffered = %d, want %d", len(ch), cap(ch))
	}
}
