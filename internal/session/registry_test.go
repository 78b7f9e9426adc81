package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRegistryOpenGetRemove(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	if _, err := r.Open(ctx, "  ", Options{}); !errors.Is(err, ErrInvalidGameID) {
		t.Fatalf("blank id = %v", err)
	}
	a, err := r.Open(ctx, "a", Options{Authority: nopAuthority{}})
	if err != nil {
		t.Fatalf("Open a: %v", err)
	}
	if _, err := r.Open(ctx, "a", Options{}); !errors.Is(err, ErrAlreadyOpen) {
		t.Fatalf("duplicate = %v", err)
	}
	if _, err := r.Open(ctx, "b", Options{Authority: nopAuthority{}}); err != nil {
		t.Fatalf("Open b: %v", err)
	}
	if r.Len() != 2 || strings.Join(r.IDs(), ",") != "a,b" {
		t.Fatalf("ids = %v", r.IDs())
	}
	got, err := r.Get("a")
	if err != nil || got != a {
		t.Fatalf("Get a = %v %v", got, err)
	}

	if err := r.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("removed session still running")
	}
	if _, err := r.Get("a"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Get after remove = %v", err)
	}
	if err := r.Remove("a"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("second remove = %v", err)
	}

	if err := r.CloseAll(ctx); err != nil {
		t.Fatalf("CloseAll: %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("len after CloseAll = %d", r.Len())
	}
}

func TestRegistryDropsFinishedSession(t *testing.T) {
	r := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	s, err := r.Open(ctx, "g", Options{Authority: nopAuthority{}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	cancel()
	<-s.Done()

	deadline := time.Now().Add(2 * time.Second)
	for r.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("session not dropped")
		}
		time.Sleep(2 * time.Millisecond)
	}
}
