package ws

import (
	"testing"
	"time"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/underwriting"
)

func TestHubSubscribeAndPublish(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil)

	hub.Subscribe(QueueChannel, client)
	hub.Publish(QueueChannel, []byte(`{"type":"application_submitted"}`))

	select {
	case msg := <-client.out:
		if string(msg) != `{"type":"application_submitted"}` {
			t.Fatalf("unexpected payload: %s", string(msg))
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for message")
	}

	hub.UnsubscribeAll(client)
	if n := hub.Subscribers(QueueChannel); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
}

func TestHubPublishSkipsOtherChannels(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil)
	hub.Subscribe(ApplicationChannel("app-1"), client)

	hub.Publish(ApplicationChannel("app-2"), []byte(`{}`))
	hub.Publish(QueueChannel, []byte(`{}`))

	select {
	case msg := <-client.out:
		t.Fatalf("unexpected delivery: %s", string(msg))
	default:
	}
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil)
	hub.Subscribe(QueueChannel, client)
	client.close()
	client.close()

	hub.Publish(QueueChannel, []byte(`{}`))
}

func TestSubscriptionChannel(t *testing.T) {
	cases := []struct {
		msg  subscribeMessage
		want string
	}{
		{subscribeMessage{Channel: "underwriter:queue"}, QueueChannel},
		{subscribeMessage{Channel: "queue"}, QueueChannel},
		{subscribeMessage{Channel: "application", ApplicationID: "abc"}, "application:abc"},
		{subscribeMessage{Channel: "application"}, ""},
		{subscribeMessage{Channel: "application:xyz"}, "application:xyz"},
		{subscribeMessage{Channel: "pool:repayments"}, ""},
	}
	for _, tc := range cases {
		if got := subscriptionChannel(tc.msg); got != tc.want {
			t.Fatalf("subscriptionChannel(%+v) = %q, want %q", tc.msg, got, tc.want)
		}
	}
}

func TestHubDeliversServiceChannels(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil)

	channel := underwriting.ApplicationChannel("app-7")
	if !ValidChannel(channel) {
		t.Fatalf("ValidChannel(%q) = false", channel)
	}
	hub.Subscribe(subscriptionChannel(subscribeMessage{Channel: "application", ApplicationID: "app-7"}), client)
	hub.Publish(channel, []byte(`{"type":"application_approved"}`))

	select {
	case <-client.out:
	case <-time.After(time.Second):
		t.Fatal("expected event on service channel")
	}
}
