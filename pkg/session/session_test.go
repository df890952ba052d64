package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"plantblog/pkg/blog"
)

func storages(t *testing.T) map[string]Storage {
	t.Helper()
	st := map[string]Storage{
		"memory": NewMemoryStorage(),
		"file":   NewFileStorage(filepath.Join(t.TempDir(), "session.json"), time.Hour),
	}
	if addr := os.Getenv("PLANTBLOG_TEST_REDIS_ADDR"); addr != "" {
		client := NewRedisClient(addr, "")
		t.Cleanup(func() { client.Close() })
		st["redis"] = NewRedisStorage(client, "plantblog-test:"+t.Name(), time.Minute)
	}
	return st
}

func TestSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	for name, st := range storages(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(ctx, st); !errors.Is(err, ErrSessionNotFound) {
				t.Fatalf("expected ErrSessionNotFound on empty storage, got %v", err)
			}

			want := &Session{Token: "t1", CurrentUser: &blog.User{ID: 1, Username: "alice", Email: "alice@example.com"}}
			if err := Save(ctx, st, want); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, err := Load(ctx, st)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if got.Token != want.Token || *got.CurrentUser != *want.CurrentUser {
				t.Errorf("expected %+v, got %+v", want, got)
			}

			if err := Clear(ctx, st); err != nil {
				t.Fatalf("clear: %v", err)
			}
			if _, ok, _ := st.Get(ctx, TokenKey); ok {
				t.Errorf("expected token key to be removed")
			}
			if _, err := Load(ctx, st); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("expected ErrSessionNotFound after clear, got %v", err)
			}
		})
	}
}

func TestLoadDiscardsPartialSession(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()
	_ = st.Set(ctx, TokenKey, "orphan")

	if _, err := Load(ctx, st); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, ok, _ := st.Get(ctx, TokenKey); ok {
		t.Errorf("expected orphan token to be removed")
	}
}

func TestLoadDiscardsCorruptUser(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()
	_ = st.Set(ctx, TokenKey, "t1")
	_ = st.Set(ctx, CurrentUserKey, "{not json")

	if _, err := Load(ctx, st); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSaveRejectsPartialSession(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()
	if err := Save(ctx, st, &Session{Token: "t1"}); !errors.Is(err, ErrPartialSession) {
		t.Errorf("expected ErrPartialSession, got %v", err)
	}
	if _, ok, _ := st.Get(ctx, TokenKey); ok {
		t.Errorf("nothing should be written for a partial session")
	}
}

func TestFileStorageRemovesEmptyFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	st := NewFileStorage(path, 0)

	if err := st.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
	if err := st.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed, got %v", err)
	}
}

func TestValid(t *testing.T) {
	var nilSess *Session
	cases := []struct {
		sess *Session
		ok   bool
	}{
		{nilSess, false},
		{&Session{}, false},
		{&Session{Token: "t"}, false},
		{&Session{CurrentUser: &blog.User{ID: 1}}, false},
		{&Session{Token: "t", CurrentUser: &blog.User{ID: 1}}, true},
	}
	for i, c := range cases {
		if got := c.sess.Valid(); got != c.ok {
			t.Errorf("case %d: expected %v, got %v", i, c.ok, got)
		}
	}
}

func TestFileStorageExpires(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st := NewFileStorage(path, time.Hour)
	st.now = func() time.Time { return now }

	sess := &Session{Token: "t1", CurrentUser: &blog.User{ID: 1, Username: "fern"}}
	if err := Save(ctx, st, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	now = now.Add(59 * time.Minute)
	if _, err := Load(ctx, st); err != nil {
		t.Fatalf("expected session before the deadline, got %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := Load(ctx, st); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected expired session to be gone, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected expired file to be removed, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestFileStorageWriteRenewsExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st := NewFileStorage(filepath.Join(t.TempDir(), "session.json"), time.Hour)
	st.now = func() time.Time { return now }

	if err := st.Set(ctx, "k", "v1"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(50 * time.Minute)
	if err := st.Set(ctx, "k", "v2"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(50 * time.Minute)
	if val, ok, err := st.Get(ctx, "k"); err != nil || !ok || val != "v2" {
		t.Errorf("expected renewed value, got %q ok=%v err=%v", val, ok, err)
	}
}
