package store

import (
	"context"
	"fmt"
	"strings"

	"plantblog/pkg/api"
	"plantblog/pkg/blog"
	"plantblog/pkg/session"
)

// CheckFieldAvailability asks the server whether an email or username is
// free. Any failure is returned so the caller can tell "taken" from
// "could not check".
func (s *Store) CheckFieldAvailability(ctx context.Context, field, value string) (bool, error) {
	if field == "email" || field == "username" {
		value = strings.ToLower(strings.TrimSpace(value))
	}
	ok, err := s.api.CheckAvailability(ctx, field, value)
	if err != nil {
		s.Logger.Errorw("availability check failed",
			"field", field,
			"error", err)
		return false, err
	}
	return ok, nil
}

// SignUp registers a user. It does not log in. HTTP failures are shown via
// the alerter and reported as false; transport failures are returned.
func (s *Store) SignUp(ctx context.Context, u blog.NewUser) (bool, error) {
	u = u.Normalize()
	if err := blog.Validate(u); err != nil {
		s.alerts.Alert(err.Error())
		return false, nil
	}

	err := s.api.SignUp(ctx, u)
	if err == nil {
		s.Logger.Infow("signed up", "username", u.Username)
		return true, nil
	}
	if api.IsTransport(err) {
		s.Logger.Errorw("signup failed", "error", err)
		return false, err
	}
	s.alerts.Alert(api.MessageOr(err, MsgSignUpFailed))
	return false, nil
}

// Login authenticates by email or username and persists the session to
// storage before publishing it to state, so both always agree.
func (s *Store) Login(ctx context.Context, identifier, password string) (bool, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))

	res, err := s.api.Login(ctx, identifier, password)
	if err != nil {
		if api.IsTransport(err) {
			s.Logger.Errorw("login failed", "error", err)
			return false, err
		}
		s.alerts.Alert(api.MessageOr(err, MsgLoginFailed))
		return false, nil
	}

	sess := &session.Session{Token: res.Token, CurrentUser: res.User}
	if err := session.Save(ctx, s.storage, sess); err != nil {
		s.Logger.Errorw("persist session failed", "error", err)
		return false, fmt.Errorf("persist session: %w", err)
	}
	s.state.SetState(SetSession(res.Token, res.User))
	s.Logger.Infow("user login success",
		"ID", res.User.ID,
		"Name", res.User.Username)
	return true, nil
}

// Logout is local only and always ends Anonymous, even when clearing the
// storage fails.
func (s *Store) Logout(ctx context.Context) {
	if err := session.Clear(ctx, s.storage); err != nil {
		s.Logger.Errorw("clear session storage failed", "error", err)
	}
	s.statusGen.Add(1)
	s.state.SetState(ClearSession(), SetUserLikeStatus(""))
}
