// Package store holds the plant blog client state and the actions that
// change it.
//
// Every action that mutates data on the server re-reads the affected lists
// afterwards instead of patching local state, so what subscribers see is
// always a snapshot of server truth. Reads that may race with each other
// (the list, the post detail, the like status) carry generation numbers:
// a response that arrives after a newer request for the same slot was
// started is dropped.
package store

import (
	"context"
	"errors"
	"sync/atomic"

	"plantblog/pkg/api"
	"plantblog/pkg/blog"
	"plantblog/pkg/session"

	"go.uber.org/zap"
)

// User-facing messages.
const (
	MsgLoadBlogsFailed    = "Failed to load blog posts"
	MsgLoginToCreate      = "Please log in to create a post"
	MsgCreateFailed       = "Failed to create post"
	MsgLoginToEdit        = "Please log in to edit a post"
	MsgEditFailed         = "Failed to edit post"
	MsgLoginToLikePost    = "Please log in to like posts"
	MsgLoginToComment     = "Please log in to comment"
	MsgLoginToLikeComment = "Please log in to like/dislike comments"
	MsgSignUpFailed       = "Sign up failed"
	MsgLoginFailed        = "Login failed"
)

var ErrStaleResponse = errors.New("stale response dropped")

// API is the remote collaborator. *api.Client implements it.
type API interface {
	ListPosts(ctx context.Context) ([]blog.Post, error)
	GetPost(ctx context.Context, id int) (*blog.Post, error)
	CreatePost(ctx context.Context, token string, authorID int, in blog.PostInput) (*blog.Post, error)
	EditPost(ctx context.Context, token string, id int, in blog.PostInput) error
	DeletePost(ctx context.Context, token string, id int) (int, error)
	LikePost(ctx context.Context, token string, id int, isLike bool) error
	PostLikeStatus(ctx context.Context, token string, id int) (blog.LikeStatus, error)
	ListComments(ctx context.Context, postID int) ([]blog.Comment, error)
	CreateComment(ctx context.Context, token string, postID int, content string) (*blog.Comment, error)
	DeleteComment(ctx context.Context, token string, commentID int) error
	LikeComment(ctx context.Context, token string, commentID int, isLike bool) error
	SignUp(ctx context.Context, u blog.NewUser) error
	Login(ctx context.Context, identifier, password string) (*api.LoginResult, error)
	CheckAvailability(ctx context.Context, field, value string) (bool, error)
}

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(msg string)
}

type AlertFunc func(msg string)

func (f AlertFunc) Alert(msg string) { f(msg) }

type Store struct {
	state   *Container
	api     API
	storage session.Storage
	alerts  Alerter
	Logger  *zap.SugaredLogger

	listGen   atomic.Uint64
	detailGen atomic.Uint64
	statusGen atomic.Uint64
}

type Option func(*Store)

func WithAlerter(a Alerter) Option {
	return func(s *Store) { s.alerts = a }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) { s.Logger = l }
}

// New builds a store and hydrates the session from storage. Everything
// else starts empty.
func New(ctx context.Context, remote API, storage session.Storage, opts ...Option) *Store {
	s := &Store{
		api:     remote,
		storage: storage,
		Logger:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.alerts == nil {
		s.alerts = AlertFunc(func(msg string) { s.Logger.Warnw("alert", "message", msg) })
	}

	initial := State{}
	sess, err := session.Load(ctx, storage)
	switch {
	case err == nil:
		initial.Token = sess.Token
		initial.CurrentUser = sess.CurrentUser
		s.Logger.Infow("session restored",
			"userID", sess.CurrentUser.ID)
	case errors.Is(err, session.ErrSessionNotFound):
	default:
		s.Logger.Errorw("session restore failed", "error", err)
	}
	s.state = NewContainer(initial)
	return s
}

func (s *Store) Snapshot() State {
	return s.state.Snapshot()
}

func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}

// SetState merges updates into the state and notifies subscribers.
func (s *Store) SetState(updates ...Update) {
	s.state.SetState(updates...)
}

func (s *Store) session() (string, *blog.User, bool) {
	st := s.state.Snapshot()
	if !st.LoggedIn() {
		return "", nil, false
	}
	return st.Token, st.CurrentUser, true
}

// setIfCurrent merges updates only while g is still the newest generation
// handed out by gen.
func (s *Store) setIfCurrent(gen *atomic.Uint64, g uint64, updates ...Update) bool {
	return s.state.setStateWhen(func(State) bool { return gen.Load() == g }, updates...)
}

func (s *Store) IsAuthor(p blog.Post) bool {
	return s.state.Snapshot().IsAuthor(p)
}

func (s *Store) OwnsComment(c blog.Comment) bool {
	return s.state.Snapshot().OwnsComment(c)
}
