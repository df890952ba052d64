package view

import (
	"context"
	"io"
	"time"

	"plantblog/pkg/blog"
	"plantblog/pkg/store"
)

// PostList is the blog index with its optional new-post form.
type PostList struct {
	Store   *store.Store
	Alerts  store.Alerter
	Confirm Confirmer
	Now     func() time.Time

	Form     blog.PostInput
	showForm bool
}

func (pl *PostList) Mount(ctx context.Context) error {
	return pl.Store.FetchBlogs(ctx)
}

func (pl *PostList) FormVisible() bool {
	return pl.showForm
}

func (pl *PostList) ToggleNewPost() {
	pl.showForm = !pl.showForm
}

// Submit creates a post from the form. The form is cleared only when the
// post was accepted; on failure the input stays for another try.
func (pl *PostList) Submit(ctx context.Context) bool {
	if !pl.Store.CreateBlogPost(ctx, pl.Form) {
		return false
	}
	pl.Form = blog.PostInput{}
	return true
}

func (pl *PostList) Delete(ctx context.Context, id int) bool {
	if !pl.Confirm.Confirm(MsgConfirmDelete) {
		return false
	}
	if !pl.Store.DeleteBlog(ctx, id) {
		pl.Alerts.Alert(MsgDeleteFailed)
		return false
	}
	return true
}

// ToggleLike votes on a post from the list. Authors cannot vote on their
// own posts.
func (pl *PostList) ToggleLike(ctx context.Context, p blog.Post, isLike bool) bool {
	if pl.Store.IsAuthor(p) {
		return false
	}
	return pl.Store.HandleBlogLikeToggle(ctx, p.ID, isLike)
}

func (pl *PostList) now() time.Time {
	if pl.Now != nil {
		return pl.Now()
	}
	return time.Now()
}

func (pl *PostList) Render(w io.Writer) error {
	st := pl.Store.Snapshot()
	now := pl.now()
	s := &screen{}

	if st.LoggedIn() {
		if !pl.showForm {
			s.line("[+] Create a New Blog Post")
		} else {
			s.line("[-] Hide the Create New Post")
			s.line("== Create New Blog Post ==")
			if st.BlogError != "" {
				s.line("! %s", st.BlogError)
			}
			s.line("Title: %s", pl.Form.Title)
			s.line("Content: %s", pl.Form.Content)
			s.line("Image URL (optional): %s", pl.Form.ImageURL)
		}
		s.line("")
	}

	s.line("== Blog Posts ==")
	if !pl.showForm && st.BlogError != "" {
		s.line("! %s", st.BlogError)
	}
	if len(st.Blogs) == 0 {
		s.line(MsgNoPosts)
		return s.flush(w)
	}
	for _, p := range st.Blogs {
		title := p.Title
		if st.IsAuthor(p) {
			title += "  [x]"
		}
		s.line("#%d %s", p.ID, title)
		s.line("   By %s, %s", p.Author, when(p.CreatedAt, now))
		s.line("   %s", excerpt(p.Content))
		s.line("   +%d -%d  comments: %d  -> %s", p.LikesCount, p.DislikesCount, p.CommentsCount, PostRoute(p.ID))
	}
	return s.flush(w)
}
