// Package fakeapi is an in-memory stand-in for the plant blog HTTP API.
// It backs the client's tests and the local dev server; it is not meant
// to hold real data.
package fakeapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func AddHandleFuncs(r *mux.Router, h *Handler) {
	r.HandleFunc("/api/signup", h.SignUp).Methods("POST")
	r.HandleFunc("/api/login", h.Login).Methods("POST")
	r.HandleFunc("/api/check-availability", h.CheckAvailability).Methods("POST")

	r.HandleFunc("/api/blog_posts", h.ListPosts).Methods("GET")
	r.HandleFunc("/api/blog_posts", h.CreatePost).Methods("POST")
	r.HandleFunc("/api/blog_posts/{id:[0-9]+}", h.GetPost).Methods("GET")
	r.HandleFunc("/api/blog_posts/{id:[0-9]+}/edit", h.EditPost).Methods("PUT")
	r.HandleFunc("/api/delete_blog/{id:[0-9]+}", h.DeletePost).Methods("DELETE")
	r.HandleFunc("/api/blog_posts/{id:[0-9]+}/like", h.LikePost).Methods("POST")
	r.HandleFunc("/api/blog_posts/{id:[0-9]+}/like_status", h.LikeStatus).Methods("GET")
	r.HandleFunc("/api/blog_posts/{id:[0-9]+}/comments", h.ListComments).Methods("GET")
	r.HandleFunc("/api/blog_posts/{id:[0-9]+}/comments", h.AddComment).Methods("POST")
	r.HandleFunc("/api/comments/{id:[0-9]+}", h.DeleteComment).Methods("DELETE")
	r.HandleFunc("/api/comments/{id:[0-9]+}/like", h.LikeComment).Methods("POST")
}

type Server struct {
	Repo    *MemoryRepo
	Tokens  *TokenIssuer
	Handler http.Handler
}

// New builds a ready-to-serve fake API with an empty data set.
func New(secret []byte, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	repo := NewMemoryRepo()
	tokens := NewTokenIssuer(secret, 12*time.Hour)
	h := &Handler{Repo: repo, Tokens: tokens, Logger: logger}

	r := mux.NewRouter()
	AddHandleFuncs(r, h)

	return &Server{
		Repo:    repo,
		Tokens:  tokens,
		Handler: AccessLog(logger, Auth(tokens, logger, r)),
	}
}
