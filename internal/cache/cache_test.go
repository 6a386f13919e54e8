package cache

import (
	"testing"
	"time"

	"songquiz/internal/quiz"
)

func TestKeyVariesByAllInputs(t *testing.T) {
	base := Key("80s rock", 10, quiz.Medium)
	if Key("80s rock", 10, quiz.Medium) != base {
		t.Error("identical inputs produced different keys")
	}
	if Key("90s rock", 10, quiz.Medium) == base {
		t.Error("different prompt produced the same key")
	}
	if Key("80s rock", 20, quiz.Medium) == base {
		t.Error("different count produced the same key")
	}
	if Key("80s rock", 10, quiz.Hard) == base {
		t.Error("different difficulty produced the same key")
	}
}

func TestGetMiss(t *testing.T) {
	c := New(time.Hour)
	if got := c.Get("missing"); got != nil {
		t.Errorf("Get() = %+v, want nil", got)
	}
}

func TestSetAndGet(t *testing.T) {
	c := New(time.Hour)
	q := &quiz.Quiz{ID: "abc12345", Prompt: "80s rock", TotalSongs: 10, Difficulty: quiz.Medium}

	key := Key(q.Prompt, q.TotalSongs, q.Difficulty)
	c.Set(key, q)

	got := c.Get(key)
	if got == nil {
		t.Fatal("Get() = nil after Set")
	}
	if got.ID != q.ID {
		t.Errorf("Get().ID = %q, want %q", got.ID, q.ID)
	}
}

func TestExpiry(t *testing.T) {
	c := New(time.Hour)

	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("k", &quiz.Quiz{ID: "abc12345"})

	current = current.Add(59 * time.Minute)
	if c.Get("k") == nil {
		t.Error("entry expired before TTL elapsed")
	}

	current = current.Add(2 * time.Minute)
	if got := c.Get("k"); got != nil {
		t.Errorf("Get() = %+v after TTL, want nil", got)
	}

	// Expired entry is removed, not just hidden
	c.mu.Lock()
	_, present := c.entries["k"]
	c.mu.Unlock()
	if present {
		t.Error("expired entry still stored")
	}
}

func TestZeroTTLUsesDefault(t *testing.T) {
	c := New(0)
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
}
