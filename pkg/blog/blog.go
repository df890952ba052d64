package blog

import (
	"errors"
	"strings"
	"time"
)

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LikeStatus is the requesting user's own vote on a post or comment.
// The zero value means the status is unknown (no session or not fetched yet).
type LikeStatus string

const (
	LikeStatusLike    LikeStatus = "like"
	LikeStatusDislike LikeStatus = "dislike"
	LikeStatusNone    LikeStatus = "none"
)

func ParseLikeStatus(s string) LikeStatus {
	switch LikeStatus(s) {
	case LikeStatusLike, LikeStatusDislike:
		return LikeStatus(s)
	}
	return LikeStatusNone
}

type Post struct {
	ID             int        `json:"id"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	ImageURL       string     `json:"image_url,omitempty"`
	AuthorID       int        `json:"author_id"`
	Author         string     `json:"author"`
	CreatedAt      string     `json:"created_at"`
	LikesCount     int        `json:"likes_count"`
	DislikesCount  int        `json:"dislikes_count"`
	CommentsCount  int        `json:"comments_count"`
	UserLikeStatus LikeStatus `json:"user_like_status,omitempty"`
}

func (p Post) Created() (time.Time, error) {
	return ParseTimestamp(p.CreatedAt)
}

type Comment struct {
	ID             int        `json:"id"`
	Content        string     `json:"content"`
	UserID         int        `json:"user_id"`
	PostID         int        `json:"post_id"`
	Author         string     `json:"author"`
	CreatedAt      string     `json:"created_at"`
	LikesCount     int        `json:"likes_count"`
	DislikesCount  int        `json:"dislikes_count"`
	UserLikeStatus LikeStatus `json:"user_like_status,omitempty"`
}

func (c Comment) Created() (time.Time, error) {
	return ParseTimestamp(c.CreatedAt)
}

// PostInput carries the user-editable fields of a post. Edits send the
// full set, not a diff.
type PostInput struct {
	Title    string `json:"title" validate:"required,max=255"`
	Content  string `json:"content" validate:"required"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
}

type NewUser struct {
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=6"`
	Username string `json:"username" validate:"required,min=3,max=250"`
}

// Normalize lower-cases the identity fields. Identities are case-insensitive.
func (u NewUser) Normalize() NewUser {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	return u
}

var ErrBadTimestamp = errors.New("unrecognized timestamp")

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts RFC 3339 as well as the zone-less ISO form the
// API emits. Zone-less values are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadTimestamp
}
