package session

import (
	"testing"
	"time"
)

func TestCreateAndExists(t *testing.T) {
	m := NewManager(Config{})

	id := m.Create()
	if id == "" {
		t.Fatal("empty session id")
	}
	if !m.Exists(id) {
		t.Error("freshly created session should exist")
	}
	if m.Exists("no-such-session") {
		t.Error("unknown id should not exist")
	}

	id2 := m.Create()
	if id2 == id {
		t.Error("session ids should be unique")
	}
	if m.Count() != 2 {
		t.Errorf("Count = %d, want 2", m.Count())
	}
}

func TestAddMessageAndHistory(t *testing.T) {
	m := NewManager(Config{})
	id := m.Create()

	if err := m.AddMessage(id, "user", "What is a trial balance?"); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if err := m.AddMessage(id, "assistant", "Start by thinking about what it lists."); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	history, err := m.History(id)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "assistant" {
		t.Errorf("roles = %q, %q", history[0].Role, history[1].Role)
	}

	if err := m.AddMessage("missing", "user", "hi"); err != ErrNotFound {
		t.Errorf("AddMessage on missing session = %v, want ErrNotFound", err)
	}
}

func TestHistoryCap(t *testing.T) {
	m := NewManager(Config{MaxHistory: 4})
	id := m.Create()

	for i := 0; i < 10; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		if err := m.AddMessage(id, role, string(rune('a'+i))); err != nil {
			t.Fatalf("AddMessage: %v", err)
		}
	}

	history, err := m.History(id)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("history length = %d, want 4", len(history))
	}
	if history[0].Content != "g" || history[3].Content != "j" {
		t.Errorf("oldest messages should be dropped first: %v", history)
	}
}

func TestRecentHistory(t *testing.T) {
	m := NewManager(Config{})
	id := m.Create()
	for _, c := range []string{"one", "two", "three"} {
		if err := m.AddMessage(id, "user", c); err != nil {
			t.Fatalf("AddMessage: %v", err)
		}
	}

	recent, err := m.RecentHistory(id, 2)
	if err != nil {
		t.Fatalf("RecentHistory: %v", err)
	}
	if len(recent) != 2 || recent[0].Content != "two" {
		t.Errorf("recent = %v", recent)
	}
}

func TestClearAndDelete(t *testing.T) {
	m := NewManager(Config{})
	id := m.Create()
	if err := m.AddMessage(id, "user", "hello"); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	if err := m.Clear(id); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	history, err := m.History(id)
	if err != nil {
		t.Fatalf("History after clear: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history not cleared: %v", history)
	}
	if !m.Exists(id) {
		t.Error("cleared session should still exist")
	}

	m.Delete(id)
	if m.Exists(id) {
		t.Error("deleted session should not exist")
	}
}

func TestInfo(t *testing.T) {
	m := NewManager(Config{})
	id := m.Create()
	if err := m.AddMessage(id, "user", "hi"); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	info, err := m.Info(id)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.SessionID != id || info.MessageCount != 1 {
		t.Errorf("info = %+v", info)
	}
	if info.CreatedAt.IsZero() || info.LastActivity.Before(info.CreatedAt) {
		t.Errorf("timestamps = %v / %v", info.CreatedAt, info.LastActivity)
	}

	if _, err := m.Info("missing"); err != ErrNotFound {
		t.Errorf("Info on missing session = %v, want ErrNotFound", err)
	}
}

func TestExpiryAndCleanup(t *testing.T) {
	m := NewManager(Config{Timeout: 30 * time.Minute})
	clock := time.Now()
	m.now = func() time.Time { return clock }

	stale := m.Create()
	clock = clock.Add(45 * time.Minute)
	fresh := m.Create()

	if m.Exists(stale) {
		t.Error("idle session past timeout should be treated as expired")
	}
	if !m.Exists(fresh) {
		t.Error("fresh session should exist")
	}
	if _, err := m.History(stale); err != ErrNotFound {
		t.Errorf("History on expired session = %v, want ErrNotFound", err)
	}

	removed := m.CleanupExpired()
	if removed != 1 {
		t.Errorf("CleanupExpired = %d, want 1", removed)
	}
	if m.Count() != 1 {
		t.Errorf("Count after cleanup = %d, want 1", m.Count())
	}
}

func TestActivityRefreshesExpiry(t *testing.T) {
	m := NewManager(Config{Timeout: 30 * time.Minute})
	clock := time.Now()
	m.now = func() time.Time { return clock }

	id := m.Create()
	clock = clock.Add(20 * time.Minute)
	if err := m.AddMessage(id, "user", "still here"); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	clock = clock.Add(20 * time.Minute)

	if !m.Exists(id) {
		t.Error("activity should reset the idle timer")
	}
}
