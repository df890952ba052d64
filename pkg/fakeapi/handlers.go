package fakeapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"plantblog/pkg/blog"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

var ErrJSONUnmarshal = errors.New("json unmarshal error")
var ErrReadReqBody = errors.New("read request body error")

type Handler struct {
	Repo   *MemoryRepo
	Tokens *TokenIssuer
	Logger *zap.SugaredLogger
}

func (handler *Handler) sendJSON(w http.ResponseWriter, status int, v any) {
	resp, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "json marshal error", http.StatusInternalServerError)
		handler.Logger.Error(err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(resp); err != nil {
		handler.Logger.Error(err)
	}
}

func (handler *Handler) sendMessage(w http.ResponseWriter, status int, msg string) {
	handler.sendJSON(w, status, map[string]string{"message": msg})
}

func (handler *Handler) sendError(w http.ResponseWriter, status int, msg string) {
	handler.sendJSON(w, status, map[string]string{"error": msg})
}

func (handler *Handler) readJSON(r *http.Request, v any) error {
	js, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		return ErrReadReqBody
	}
	if err := json.Unmarshal(js, v); err != nil {
		return ErrJSONUnmarshal
	}
	return nil
}

func pathID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

// requireUser answers 401 itself when there is no authenticated user.
func (handler *Handler) requireUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		handler.sendMessage(w, http.StatusUnauthorized, "Unauthorized: missing or invalid token")
		return 0, false
	}
	return userID, true
}

func (handler *Handler) sendRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrCommentNotFound), errors.Is(err, ErrAuthorNotFound):
		handler.sendMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAccessDenied):
		handler.sendMessage(w, http.StatusForbidden, "Unauthorized: You are not the author")
	default:
		handler.sendError(w, http.StatusInternalServerError, err.Error())
		handler.Logger.Error(err)
	}
}

func (handler *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	handler.sendJSON(w, http.StatusOK, handler.Repo.ListPosts())
}

func (handler *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handler.sendMessage(w, http.StatusNotFound, ErrPostNotFound.Error())
		return
	}
	post, err := handler.Repo.GetPost(id)
	if err != nil {
		handler.sendRepoError(w, err)
		return
	}
	handler.sendJSON(w, http.StatusOK, post)
}

type createPostForm struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
	AuthorID int    `json:"author_id"`
}

func (handler *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := handler.requireUser(w, r)
	if !ok {
		return
	}
	form := &createPostForm{}
	if err := handler.readJSON(r, form); err != nil {
		handler.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	if form.AuthorID != 0 && form.AuthorID != userID {
		handler.sendError(w, http.StatusForbidden, "author_id does not match the session")
		return
	}
	in := blog.PostInput{Title: form.Title, Content: form.Content, ImageURL: form.ImageURL}
	if err := blog.Validate(in); err != nil {
		handler.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := handler.Repo.AddPost(userID, in)
	if err != nil {
		handler.sendRepoError(w, err)
		return
	}
	handler.sendJSON(w, http.StatusCreated, post)
	handler.Logger.Infow("post added",
		"postID", post.ID,
		"authorID", userID)
}

func (handler *Handler) EditPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := handler.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		handler.sendMessage(w, http.StatusNotFound, ErrPostNotFound.Error())
		return
	}
	edit := PostEdit{}
	if err := handler.readJSON(r, &edit); err != nil {
		handler.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	post, err := handler.Repo.EditPost(id, userID, edit)
	if err != nil {
		handler.sendRepoError(w, err)
		return
	}
	handler.sendJSON(w, http.StatusOK, map[string]any{
		"message": "Blog updated successfully",
		"blog":    post,
	})
}

func (handler *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := handler.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		handler.sendMessage(w, http.StatusNotFound, ErrPostNotFound.Error())
		return
	}
	if err := handler.Repo.DeletePost(id, userID); err != nil {
		handler.sendRepoError(w, err)
		return
	}
	handler.sendMessage(w, http.StatusOK, "Blog deleted successfully")
	handler.Logger.Infow("post deleted",
		"postID", id)
}

type likeForm struct {
	IsLike *bool `json:"is_like"`
}

func (handler *Handler) readLike(w http.ResponseWriter, r *http.Request) (bool, bool) {
	form := likeForm{}
	if err := handler.readJSON(r, &form); err != nil {
		handler.sendError(w, http.StatusBadRequest, err.Error())
		return false, false
	}
	if form.IsLike == nil {
		handler.sendError(w, http.StatusBadRequest, "is_like is required")
		return false, false
	}
	return *form.IsLike, true
}

func (handler *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := handler.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		handler.sendMessage(w, http.StatusNotFound, ErrPostNotFound.Error())
		return
	}
	isLike, ok := handler.readLike(w, r)
	if !ok {
		return
	}
	if err := handler.Repo.TogglePostVote(id, userID, isLike); err != nil {
		handler.sendRepoError(w, err)
		return
	}
	handler.sendMessage(w, http.StatusOK, "Success")
}

func (handler *Handler) LikeStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := handler.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		handler.sendMessage(w, http.StatusNotFound, ErrPostNotFound.Error())
		return
	}
	status, err := handler.Repo.PostVoteStatus(id, userID)
	if err != nil {
		handler.sendRepoError(w, err)
		return
	}
	handler.sendJSON(w, http.StatusOK, map[string]blog.LikeStatus{"status": status})
}

func (handler *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handler.sendMessage(w, http.StatusNotFound, ErrPostNotFound.Error())
		return
	}
	handler.sendJSON(w, http.StatusOK, handler.Repo.ListComments(id))
}

type commentForm struct {
	Content string `json:"content"`
}

func (handler *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := handler.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		handler.sendMessage(w, http.StatusNotFound, ErrPostNotFound.Error())
		return
	}
	form := commentForm{}
	if err := handler.readJSON(r, &form); err != nil {
		handler.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	comment, err := handler.Repo.AddComment(id, userID, form.Content)
	if errors.Is(err, ErrEmptyCommentBody) {
		handler.sendError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		handler.sendRepoError(w, err)
		return
	}
	handler.sendJSON(w, http.StatusCreated, comment)
	handler.Logger.Infow("comment added",
		"commentID", comment.ID,
		"postID", id)
}

func (handler *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := handler.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		handler.sendMessage(w, http.StatusNotFound, ErrCommentNotFound.Error())
		return
	}
	if err := handler.Repo.DeleteComment(id, userID); err != nil {
		handler.sendRepoError(w, err)
		return
	}
	handler.sendMessage(w, http.StatusOK, "Comment deleted successfully")
}

func (handler *Handler) LikeComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := handler.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		handler.sendMessage(w, http.StatusNotFound, ErrCommentNotFound.Error())
		return
	}
	isLike, ok := handler.readLike(w, r)
	if !ok {
		return
	}
	if err := handler.Repo.ToggleCommentVote(id, userID, isLike); err != nil {
		handler.sendRepoError(w, err)
		return
	}
	handler.sendMessage(w, http.StatusOK, "Success")
}

func (handler *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	handler.Logger.Info("/signup")
	u := blog.NewUser{}
	if err := handler.readJSON(r, &u); err != nil {
		handler.sendMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	u.Email = strings.ToLower(u.Email)
	u.Username = strings.ToLower(u.Username)
	if err := blog.Validate(u); err != nil {
		handler.sendMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := handler.Repo.AddUser(u)
	if errors.Is(err, ErrUserAlready) {
		handler.sendMessage(w, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		handler.sendError(w, http.StatusInternalServerError, err.Error())
		handler.Logger.Error(err)
		return
	}
	handler.sendMessage(w, http.StatusCreated, "User created successfully")
	handler.Logger.Infow("user registered",
		"ID", created.ID,
		"Name", created.Username)
}

type loginForm struct {
	Identifier string `json:"loginIdentifier"`
	Password   string `json:"password"`
}

func (handler *Handler) Login(w http.ResponseWriter, r *http.Request) {
	handler.Logger.Info("/login")
	form := loginForm{}
	if err := handler.readJSON(r, &form); err != nil {
		handler.sendMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := handler.Repo.CheckUser(strings.ToLower(form.Identifier), form.Password)
	if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidPassword) {
		handler.sendMessage(w, http.StatusUnauthorized, "Invalid email/username or password")
		handler.Logger.Error(err)
		return
	}
	if err != nil {
		handler.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := handler.Tokens.Issue(user, time.Now())
	if err != nil {
		handler.sendError(w, http.StatusInternalServerError, err.Error())
		handler.Logger.Error(err)
		return
	}
	handler.sendJSON(w, http.StatusOK, map[string]any{
		"token":    token,
		"userData": user,
	})
	handler.Logger.Infow("user login success",
		"ID", user.ID,
		"Name", user.Username)
}

type availabilityForm struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (handler *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	form := availabilityForm{}
	if err := handler.readJSON(r, &form); err != nil {
		handler.sendMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	ok, err := handler.Repo.Available(form.Field, strings.ToLower(form.Value))
	if err != nil {
		handler.sendMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	handler.sendJSON(w, http.StatusOK, map[string]bool{"available": ok})
}
