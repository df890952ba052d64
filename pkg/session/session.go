package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"plantblog/pkg/blog"
)

// Keys the session is persisted under.
const (
	TokenKey       = "token"
	CurrentUserKey = "currentUser"
)

var ErrSessionNotFound = errors.New("session not found")
var ErrPartialSession = errors.New("partial session")

type Session struct {
	Token       string
	CurrentUser *blog.User
}

// Valid reports whether both halves of the session are present.
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.CurrentUser != nil
}

// Storage is a string key/value store scoped to one client session.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Load reads the persisted session. A token without a user (or the other
// way round) is discarded and reported as ErrSessionNotFound.
func Load(ctx context.Context, st Storage) (*Session, error) {
	token, hasToken, err := st.Get(ctx, TokenKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", TokenKey, err)
	}
	raw, hasUser, err := st.Get(ctx, CurrentUserKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", CurrentUserKey, err)
	}
	if !hasToken && !hasUser {
		return nil, ErrSessionNotFound
	}
	if !hasToken || !hasUser || token == "" {
		_ = st.Remove(ctx, TokenKey, CurrentUserKey)
		return nil, ErrSessionNotFound
	}

	u := &blog.User{}
	if err := json.Unmarshal([]byte(raw), u); err != nil {
		_ = st.Remove(ctx, TokenKey, CurrentUserKey)
		return nil, ErrSessionNotFound
	}
	return &Session{Token: token, CurrentUser: u}, nil
}

func Save(ctx context.Context, st Storage, sess *Session) error {
	if !sess.Valid() {
		return ErrPartialSession
	}
	js, err := json.Marshal(sess.CurrentUser)
	if err != nil {
		return err
	}
	if err := st.Set(ctx, TokenKey, sess.Token); err != nil {
		return err
	}
	if err := st.Set(ctx, CurrentUserKey, string(js)); err != nil {
		_ = st.Remove(ctx, TokenKey)
		return err
	}
	return nil
}

func Clear(ctx context.Context, st Storage) error {
	return st.Remove(ctx, TokenKey, CurrentUserKey)
}
