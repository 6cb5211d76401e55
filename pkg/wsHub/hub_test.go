package ws

import (
	"context"
	"testing"

	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

func testSession(id uuid.UUID) *Session {
	return NewSession(NewConn(context.Background(), id, nil), types.DriverRole, "driver", types.Car)
}

func TestAdd_LastConnectionWins(t *testing.T) {
	hub := NewConnHub(logger.InitLogger("test", logger.LevelError))
	id := uuid.New()

	old := testSession(id)
	if err := hub.Add(old); err != nil {
		t.Fatalf("add old session: %v", err)
	}

	replacement := testSession(id)
	if err := hub.Add(replacement); err != nil {
		t.Fatalf("add replacement session: %v", err)
	}

	if n := hub.Len(); n != 1 {
		t.Fatalf("hub has %d sessions, want 1", n)
	}
	got, err := hub.Get(id)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got != replacement {
		t.Fatal("hub kept the old session instead of the replacement")
	}
}

func TestRemove_IgnoresReplacedSession(t *testing.T) {
	hub := NewConnHub(logger.InitLogger("test", logger.LevelError))
	id := uuid.New()

	old := testSession(id)
	if err := hub.Add(old); err != nil {
		t.Fatalf("add old session: %v", err)
	}
	replacement := testSession(id)
	if err := hub.Add(replacement); err != nil {
		t.Fatalf("add replacement session: %v", err)
	}

	// the old connection's teardown must not evict the replacement
	if hub.Remove(old) {
		t.Fatal("remove of a replaced session reported deregistration")
	}
	if n := hub.Len(); n != 1 {
		t.Fatalf("hub has %d sessions after stale remove, want 1", n)
	}
	got, err := hub.Get(id)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got != replacement {
		t.Fatal("replacement session is gone after stale remove")
	}

	if !hub.Remove(replacement) {
		t.Fatal("remove of the registered session reported no deregistration")
	}
	if n := hub.Len(); n != 0 {
		t.Fatalf("hub has %d sessions after remove, want 0", n)
	}
}
