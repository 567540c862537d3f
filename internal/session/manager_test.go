package session

import (
	"context"
	"testing"
	"time"
)

func TestMountUnmountCancelsContext(t *testing.T) {
	m := NewManager(0)
	screen := m.Mount(context.Background(), ScreenList)

	if screen.ID == "" {
		t.Fatal("screen should get an id")
	}
	if _, ok := m.Get(screen.ID); !ok {
		t.Fatal("mounted screen not found")
	}
	if screen.Context().Err() != nil {
		t.Fatal("context should be live while mounted")
	}

	if !m.Unmount(screen.ID) {
		t.Error("Unmount should report the screen was mounted")
	}
	if screen.Context().Err() == nil {
		t.Error("context should be cancelled after Unmount")
	}
	if m.Unmount(screen.ID) {
		t.Error("second Unmount should be a no-op")
	}
	if _, ok := m.Get(screen.ID); ok {
		t.Error("unmounted screen still returned")
	}
}

func TestMountUsesDistinctIDs(t *testing.T) {
	m := NewManager(0)
	a := m.Mount(context.Background(), ScreenList)
	b := m.Mount(context.Background(), ScreenList)
	if a.ID == b.ID {
		t.Error("screens should have distinct ids")
	}
	if got := len(m.Active()); got != 2 {
		t.Errorf("Active() = %d screens", got)
	}
}

func TestParentCancellationPropagates(t *testing.T) {
	m := NewManager(0)
	parent, cancel := context.WithCancel(context.Background())
	screen := m.Mount(parent, ScreenFavorites)

	cancel()
	if screen.Context().Err() == nil {
		t.Error("screen context should follow its parent")
	}
}

func TestIdleScreensExpire(t *testing.T) {
	m := NewManager(20 * time.Millisecond)
	screen := m.Mount(context.Background(), ScreenAdd)

	time.Sleep(40 * time.Millisecond)

	if _, ok := m.Get(screen.ID); ok {
		t.Error("idle screen should be expired")
	}
	if got := len(m.Active()); got != 0 {
		t.Errorf("Active() = %d, want 0", got)
	}
	if screen.Context().Err() == nil {
		t.Error("expired screen context should be cancelled")
	}
}

func TestTouchKeepsScreenAlive(t *testing.T) {
	m := NewManager(time.Hour)
	screen := m.Mount(context.Background(), ScreenList)
	if !m.Touch(screen.ID) {
		t.Error("Touch of mounted screen should succeed")
	}
	if m.Touch("missing") {
		t.Error("Touch of unknown screen should fail")
	}
}

func TestUnmountAll(t *testing.T) {
	m := NewManager(0)
	a := m.Mount(context.Background(), ScreenList)
	b := m.Mount(context.Background(), ScreenFavorites)

	m.UnmountAll()
	if a.Context().Err() == nil || b.Context().Err() == nil {
		t.Error("UnmountAll should cancel every screen")
	}
	if len(m.Active()) != 0 {
		t.Error("no screens should remain")
	}
}
