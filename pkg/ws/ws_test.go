package ws_test

import (
	"testing"
	"time"

	"github.com/shashiranjanraj/dabba/pkg/ws"
)

func TestSubscriptionReceivesTopicMessages(t *testing.T) {
	hub := ws.NewHub()
	go hub.Run()

	sub := hub.Subscribe("orders.1")
	other := hub.Subscribe("orders.2")

	hub.Publish("orders.1", []byte(`{"status":"paid"}`))

	select {
	case msg := <-sub.C:
		if string(msg) != `{"status":"paid"}` {
			t.Fatalf("message = %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}

	select {
	case msg := <-other.C:
		t.Fatalf("unrelated topic received %s", msg)
	case <-time.After(50 * time.Millisecond):
	}

	hub.Unsubscribe(sub)
	hub.Unsubscribe(other)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := ws.NewHub()
	go hub.Run()

	sub := hub.Subscribe("orders.1")
	hub.Unsubscribe(sub)

	select {
	case _, ok := <-sub.C:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

func TestBroadcastReachesSubscribers(t *testing.T) {
	hub := ws.NewHub()
	go hub.Run()

	sub := hub.Subscribe("orders.1")
	defer hub.Unsubscribe(sub)

	hub.Broadcast([]byte("maintenance"))

	select {
	case msg := <-sub.C:
		if string(msg) != "maintenance" {
			t.Fatalf("message = %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast not delivered")
	}
}
