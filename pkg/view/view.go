// Package view holds the terminal renditions of the plant blog screens.
// Each component renders a store snapshot as text and turns user events
// into store actions. Components keep only transient form input and UI
// toggles; everything else is read from the store on each render.
package view

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"
	"unicode/utf8"

	"plantblog/pkg/blog"

	"github.com/dustin/go-humanize"
)

const (
	RouteHome  = "/"
	RouteBlog  = "/plantblog"
	RouteLogin = "/login"
)

func PostRoute(id int) string {
	return "/blog/" + strconv.Itoa(id)
}

const (
	MsgConfirmDelete  = "Are you sure you want to delete this post?"
	MsgDeleteFailed   = "Failed to delete post"
	MsgNoPosts        = "No blog posts yet."
	MsgLoginToComment = "Please log in to leave a comment"
	MsgPostMissing    = "Post not available."
)

const excerptLen = 150

// Confirmer asks the user a yes/no question and blocks for the answer.
type Confirmer interface {
	Confirm(msg string) bool
}

// Navigator moves the user to another screen.
type Navigator interface {
	Navigate(route string)
}

type ConfirmFunc func(msg string) bool

func (f ConfirmFunc) Confirm(msg string) bool { return f(msg) }

type NavigateFunc func(route string)

func (f NavigateFunc) Navigate(route string) { f(route) }

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptLen {
		return s
	}
	return string([]rune(s)[:excerptLen]) + "..."
}

// when renders a server timestamp relative to now, or the raw value if it
// cannot be parsed.
func when(ts string, now time.Time) string {
	t, err := blog.ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func marker(status, want blog.LikeStatus) string {
	if status == want {
		return "*"
	}
	return ""
}

// screen buffers a render so a component writes to w once.
type screen struct {
	bytes.Buffer
}

func (s *screen) line(format string, args ...any) {
	fmt.Fprintf(&s.Buffer, format, args...)
	s.WriteByte('\n')
}

func (s *screen) flush(w io.Writer) error {
	_, err := w.Write(s.Bytes())
	return err
}
