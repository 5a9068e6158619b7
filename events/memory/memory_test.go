package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/syp1xd/food-ordering-app/events"
	"github.com/syp1xd/food-ordering-app/models"
)

// countingObserver records observer callbacks
type countingObserver struct {
	mu           sync.Mutex
	published    int
	delivered    int
	dropped      int
	registered   int
	deregistered int
}

func (o *countingObserver) Published(context.Context, *models.StatusEvent, int) {
	o.mu.Lock()
	o.published++
	o.mu.Unlock()
}

func (o *countingObserver) Delivered(_ context.Context, _ *models.StatusEvent, result events.Delivery) {
	o.mu.Lock()
	if result == events.DeliveryOK {
		o.delivered++
	} else {
		o.dropped++
	}
	o.mu.Unlock()
}

func (o *countingObserver) Registered(context.Context) {
	o.mu.Lock()
	o.registered++
	o.mu.Unlock()
}

func (o *countingObserver) Deregistered(context.Context) {
	o.mu.Lock()
	o.deregistered++
	o.mu.Unlock()
}

func TestInMemoryBus_PublishRegister(t *testing.T) {
	bus := NewInMemoryBus()
	defer bus.Close()

	ch := make(chan *models.StatusEvent, 10)
	bus.Register(ch)

	bus.Publish(t.Context(), models.NewStatusEvent(42, "preparing"))

	select {
	case received := <-ch:
		if received.OrderID != 42 {
			t.Errorf("Expected OrderID 42, got %d", received.OrderID)
		}
		if received.Status != "preparing" {
			t.Errorf("Expected Status preparing, got %s", received.Status)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for event")
	}
}

func TestInMemoryBus_MultipleSubscribers(t *testing.T) {
	bus := NewInMemoryBus()
	defer bus.Close()

	ch1 := make(chan *models.StatusEvent, 10)
	ch2 := make(chan *models.StatusEvent, 10)
	bus.Register(ch1)
	bus.Register(ch2)

	// The bus broadcasts: both subscribers see every order
	bus.Publish(t.Context(), models.NewStatusEvent(7, "delivered"))

	received1 := <-ch1
	if received1.OrderID != 7 {
		t.Errorf("Subscriber 1: Expected OrderID 7, got %d", received1.OrderID)
	}

	received2 := <-ch2
	if received2.OrderID != 7 {
		t.Errorf("Subscriber 2: Expected OrderID 7, got %d", received2.OrderID)
	}
}

func TestInMemoryBus_FIFOPerSubscriber(t *testing.T) {
	bus := NewInMemoryBus()
	defer bus.Close()

	ch := make(chan *models.StatusEvent, 10)
	bus.Register(ch)

	statuses := []string{"received", "preparing", "out_for_delivery", "delivered"}
	for _, s := range statuses {
		bus.Publish(t.Context(), models.NewStatusEvent(1, s))
	}

	for i, want := range statuses {
		got := <-ch
		if got.Status != want {
			t.Fatalf("event %d: expected %s, got %s", i, want, got.Status)
		}
	}
}

func TestInMemoryBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	obs := &countingObserver{}
	bus := NewInMemoryBus(WithObserver(obs))
	defer bus.Close()

	// One subscriber never drains
	stuck := make(chan *models.StatusEvent)
	bus.Register(stuck)

	healthy := make([]chan *models.StatusEvent, 50)
	for i := range healthy {
		healthy[i] = make(chan *models.StatusEvent, 1)
		bus.Register(healthy[i])
	}

	done := make(chan struct{})
	go func() {
		bus.Publish(context.Background(), models.NewStatusEvent(3, "preparing"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Publish blocked on a subscriber that never drains")
	}

	for i, ch := range healthy {
		select {
		case <-ch:
		default:
			t.Errorf("healthy subscriber %d did not receive the event", i)
		}
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if obs.dropped != 1 {
		t.Errorf("Expected 1 dropped delivery, got %d", obs.dropped)
	}
	if obs.delivered != len(healthy) {
		t.Errorf("Expected %d deliveries, got %d", len(healthy), obs.delivered)
	}
}

func TestInMemoryBus_SlowSubscriberKeepsBufferedEvents(t *testing.T) {
	bus := NewInMemoryBus()
	defer bus.Close()

	ch := make(chan *models.StatusEvent, 2)
	bus.Register(ch)

	for i := 0; i < 10; i++ {
		bus.Publish(t.Context(), models.NewStatusEvent(int64(i), "received"))
	}

	if len(ch) != 2 {
		t.Fatalf("Expected 2 buffered events, got %d", len(ch))
	}
	first := <-ch
	if first.OrderID != 0 {
		t.Errorf("Expected the oldest event to be kept, got order %d", first.OrderID)
	}
}

func TestInMemoryBus_DeregisterIsIdempotent(t *testing.T) {
	obs := &countingObserver{}
	bus := NewInMemoryBus(WithObserver(obs))
	defer bus.Close()

	ch := make(chan *models.StatusEvent, 1)
	h := bus.Register(ch)
	if bus.Subscribers() != 1 {
		t.Fatalf("Expected 1 subscriber, got %d", bus.Subscribers())
	}

	bus.Deregister(h)
	bus.Deregister(h)
	bus.Deregister(events.Handle{})
	bus.Deregister(events.NewHandle())

	if bus.Subscribers() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", bus.Subscribers())
	}
	if obs.deregistered != 1 {
		t.Errorf("Expected exactly 1 deregistration, got %d", obs.deregistered)
	}

	bus.Publish(t.Context(), models.NewStatusEvent(1, "preparing"))
	select {
	case ev := <-ch:
		t.Errorf("Deregistered channel received %+v", ev)
	default:
	}
}

func TestInMemoryBus_Close(t *testing.T) {
	obs := &countingObserver{}
	bus := NewInMemoryBus(WithObserver(obs))

	ch := make(chan *models.StatusEvent, 1)
	h := bus.Register(ch)
	bus.Register(make(chan *models.StatusEvent, 1))

	if err := bus.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	select {
	case <-bus.Done():
	default:
		t.Fatal("Expected Done to be closed")
	}

	if bus.Subscribers() != 0 {
		t.Errorf("Expected registry to be empty after Close, got %d", bus.Subscribers())
	}
	if obs.deregistered != 2 {
		t.Errorf("Expected 2 deregistrations on Close, got %d", obs.deregistered)
	}

	// Late deregistration and publish after shutdown are harmless
	bus.Deregister(h)
	bus.Publish(context.Background(), models.NewStatusEvent(1, "preparing"))
	if len(ch) != 0 {
		t.Error("Expected no delivery after Close")
	}

	h2 := bus.Register(make(chan *models.StatusEvent, 1))
	if h2.IsZero() {
		t.Error("Expected a usable handle after Close")
	}
	if bus.Subscribers() != 0 {
		t.Error("Expected Register after Close not to add a subscriber")
	}
}

func TestInMemoryBus_ConcurrentRegisterPublish(t *testing.T) {
	bus := NewInMemoryBus()
	defer bus.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch := make(chan *models.StatusEvent, 4)
			h := bus.Register(ch)
			bus.Deregister(h)
		}()
		go func(id int64) {
			defer wg.Done()
			bus.Publish(context.Background(), models.NewStatusEvent(id, "preparing"))
		}(int64(i))
	}
	wg.Wait()

	if bus.Subscribers() != 0 {
		t.Errorf("Expected no stale registrations, got %d", bus.Subscribers())
	}
}
