package event

import (
	"testing"
	"time"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus[string](BusOptions{})
	defer bus.Close()

	first, cancelFirst := bus.Subscribe()
	defer cancelFirst()
	second, cancelSecond := bus.Subscribe()
	defer cancelSecond()

	bus.Publish("reloaded")

	for _, ch := range []<-chan string{first, second} {
		select {
		case got := <-ch:
			if got != "reloaded" {
				t.Fatalf("unexpected value %q", got)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}
	if bus.Published() != 1 {
		t.Fatalf("expected 1 published, got %d", bus.Published())
	}
}

func TestBusFilteredSubscription(t *testing.T) {
	bus := NewBus[int](BusOptions{})
	defer bus.Close()

	evens, cancel := bus.SubscribeFiltered(func(v int) bool { return v%2 == 0 })
	defer cancel()

	bus.Publish(1)
	bus.Publish(2)

	select {
	case got := <-evens:
		if got != 2 {
			t.Fatalf("expected 2, got %d", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for filtered delivery")
	}
	select {
	case got := <-evens:
		t.Fatalf("unexpected extra delivery %d", got)
	default:
	}
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewBus[int](BusOptions{SubscriberBufferSize: 1})
	defer bus.Close()

	_, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(1)
	bus.Publish(2)

	if bus.Dropped() != 1 {
		t.Fatalf("expected 1 dropped, got %d", bus.Dropped())
	}
}

func TestBusCloseClosesSubscriberChannels(t *testing.T) {
	bus := NewBus[int](BusOptions{})
	ch, _ := bus.Subscribe()

	bus.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for close")
	}

	// Publishing after close is a no-op.
	bus.Publish(1)
}

func TestBusMaxSubscribers(t *testing.T) {
	bus := NewBus[int](BusOptions{MaxSubscribers: 1})
	defer bus.Close()

	_, cancelFirst := bus.Subscribe()
	defer cancelFirst()

	ch, cancelSecond := bus.Subscribe()
	defer cancelSecond()
	if _, ok := <-ch; ok {
		t.Fatal("expected rejected subscription to be closed")
	}
}
