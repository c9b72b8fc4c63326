package session

import (
	"testing"
)

func TestListenersRunInSubscriptionOrder(t *testing.T) {
	t.Parallel()
	p := NewProvider()

	var calls []string
	p.Subscribe(func(id *Identity) { calls = append(calls, "first:"+id.UserID) })
	p.Subscribe(func(id *Identity) { calls = append(calls, "second:"+id.UserID) })

	p.SignIn(Identity{UserID: "u1", Email: "u1@example.com"})

	if len(calls) != 2 || calls[0] != "first:u1" || calls[1] != "second:u1" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestSignOutPublishesNil(t *testing.T) {
	t.Parallel()
	p := NewProvider()

	got := &Identity{UserID: "sentinel"}
	p.Subscribe(func(id *Identity) { got = id })
	p.SignOut()

	if got != nil {
		t.Fatalf("listener got %+v, want nil", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	t.Parallel()
	p := NewProvider()

	count := 0
	unsubscribe := p.Subscribe(func(*Identity) { count++ })
	p.SignIn(Identity{UserID: "u1"})
	unsubscribe()
	unsubscribe()
	p.SignIn(Identity{UserID: "u1"})

	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestListenerCanUnsubscribeItself(t *testing.T) {
	t.Parallel()
	p := NewProvider()

	count := 0
	var unsubscribe func()
	unsubscribe = p.Subscribe(func(*Identity) {
		count++
		unsubscribe()
	})
	p.SignIn(Identity{UserID: "u1"})
	p.SignIn(Identity{UserID: "u1"})

	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}
