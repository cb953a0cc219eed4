package events

import (
	"testing"
	"time"
)

func TestBusVersionMonotonic(t *testing.T) {
	bus := NewBus()
	if bus.Version() != 0 {
		t.Fatalf("fresh bus version = %d, want 0", bus.Version())
	}
	for i := 1; i <= 5; i++ {
		c := bus.Publish(EntityPayment, OpCreate, int64(i))
		if c.Version != uint64(i) {
			t.Fatalf("publish %d returned version %d", i, c.Version)
		}
	}
	if bus.Version() != 5 {
		t.Fatalf("bus version = %d, want 5", bus.Version())
	}
}

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(EntityTenant, OpDelete, 42)

	select {
	case c := <-ch:
		if c.Entity != EntityTenant || c.Op != OpDelete || c.ID != 42 || c.Version != 1 {
			t.Fatalf("unexpected change: %+v", c)
		}
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
	}
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	_, cancel := bus.Subscribe() // never drained
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			bus.Publish(EntityHouse, OpUpdate, 1)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	if bus.Version() != 100 {
		t.Fatalf("version = %d, want 100", bus.Version())
	}
}

func TestBusCancelClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	cancel()
	cancel() // idempotent

	if _, open := <-ch; open {
		t.Fatal("expected closed channel after cancel")
	}
	// Publishing after cancel must not panic.
	bus.Publish(EntityRoom, OpCreate, 7)
}
