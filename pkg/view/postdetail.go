package view

import (
	"context"
	"io"
	"time"

	"plantblog/pkg/blog"
	"plantblog/pkg/store"
)

// PostDetail shows one post with its comments, and the author's edit form.
type PostDetail struct {
	Store   *store.Store
	Alerts  store.Alerter
	Confirm Confirmer
	Nav     Navigator
	Now     func() time.Time

	ID      int
	Edit    blog.PostInput
	Comment string
	editing bool
}

// Mount loads the post. The like status is only asked for with a session.
func (pd *PostDetail) Mount(ctx context.Context) error {
	err := pd.Store.FetchBlogAndComments(ctx, pd.ID)
	if pd.Store.Snapshot().LoggedIn() {
		if serr := pd.Store.FetchUserLikeStatus(ctx, pd.ID); err == nil {
			err = serr
		}
	}
	if !pd.editing {
		pd.resetEdit()
	}
	return err
}

func (pd *PostDetail) current() *blog.Post {
	p := pd.Store.Snapshot().CurrentBlog
	if p == nil || p.ID != pd.ID {
		return nil
	}
	return p
}

func (pd *PostDetail) resetEdit() {
	p := pd.current()
	if p == nil {
		pd.Edit = blog.PostInput{}
		return
	}
	pd.Edit = blog.PostInput{Title: p.Title, Content: p.Content, ImageURL: p.ImageURL}
}

func (pd *PostDetail) Editing() bool {
	return pd.editing
}

// StartEdit enters edit mode for the post's author only.
func (pd *PostDetail) StartEdit() bool {
	p := pd.current()
	if p == nil || !pd.Store.IsAuthor(*p) {
		return false
	}
	pd.resetEdit()
	pd.editing = true
	return true
}

func (pd *PostDetail) CancelEdit() {
	pd.resetEdit()
	pd.editing = false
}

func (pd *PostDetail) SubmitEdit(ctx context.Context) bool {
	if !pd.Store.EditBlogPost(ctx, pd.ID, pd.Edit) {
		return false
	}
	pd.editing = false
	pd.resetEdit()
	return true
}

func (pd *PostDetail) SubmitComment(ctx context.Context) bool {
	if !pd.Store.SubmitComment(ctx, pd.ID, pd.Comment) {
		return false
	}
	pd.Comment = ""
	return true
}

func (pd *PostDetail) DeletePost(ctx context.Context) bool {
	if !pd.Confirm.Confirm(MsgConfirmDelete) {
		return false
	}
	if !pd.Store.DeleteBlog(ctx, pd.ID) {
		pd.Alerts.Alert(MsgDeleteFailed)
		return false
	}
	pd.Nav.Navigate(RouteBlog)
	return true
}

func (pd *PostDetail) ToggleLike(ctx context.Context, isLike bool) bool {
	if p := pd.current(); p != nil && pd.Store.IsAuthor(*p) {
		return false
	}
	return pd.Store.HandleBlogLikeToggle(ctx, pd.ID, isLike)
}

func (pd *PostDetail) comment(id int) (blog.Comment, bool) {
	for _, c := range pd.Store.Snapshot().BlogComments {
		if c.ID == id && c.PostID == pd.ID {
			return c, true
		}
	}
	return blog.Comment{}, false
}

// ToggleCommentLike refuses votes on the user's own comments.
func (pd *PostDetail) ToggleCommentLike(ctx context.Context, commentID int, isLike bool) bool {
	if c, ok := pd.comment(commentID); ok && pd.Store.OwnsComment(c) {
		return false
	}
	return pd.Store.HandleCommentLikeToggle(ctx, pd.ID, commentID, isLike)
}

// DeleteComment only offers deletion on comments the user wrote.
func (pd *PostDetail) DeleteComment(ctx context.Context, commentID int) bool {
	c, ok := pd.comment(commentID)
	if !ok || !pd.Store.OwnsComment(c) {
		return false
	}
	return pd.Store.DeleteComment(ctx, pd.ID, commentID)
}

func (pd *PostDetail) Render(w io.Writer) error {
	st := pd.Store.Snapshot()
	now := time.Now()
	if pd.Now != nil {
		now = pd.Now()
	}
	s := &screen{}
	var p *blog.Post
	if st.CurrentBlog != nil && st.CurrentBlog.ID == pd.ID {
		p = st.CurrentBlog
	}

	s.line("Plant Blog /")
	if st.BlogError != "" {
		s.line("! %s", st.BlogError)
	}
	switch {
	case p == nil:
		s.line(MsgPostMissing)
	case pd.editing:
		s.line("== Editing #%d ==", p.ID)
		s.line("Image URL: %s", pd.Edit.ImageURL)
		s.line("Title: %s", pd.Edit.Title)
		s.line("Content: %s", pd.Edit.Content)
		s.line("[Save Changes] [Cancel]")
	default:
		if st.IsAuthor(*p) {
			s.line("[edit] [delete]")
		}
		if p.ImageURL != "" {
			s.line("Image: %s", p.ImageURL)
		}
		s.line("# %s", p.Title)
		s.line("%s", p.Content)
		s.line("By %s, %s", p.Author, when(p.CreatedAt, now))
		s.line("+%d%s -%d%s",
			p.LikesCount, marker(st.UserLikeStatus, blog.LikeStatusLike),
			p.DislikesCount, marker(st.UserLikeStatus, blog.LikeStatusDislike))
	}

	s.line("")
	s.line("== Comments ==")
	if !st.LoggedIn() {
		s.line(MsgLoginToComment)
	} else if pd.Comment != "" {
		s.line("> %s", pd.Comment)
	}
	for _, c := range st.BlogComments {
		if c.PostID != pd.ID {
			continue
		}
		del := ""
		if st.OwnsComment(c) {
			del = "  [x]"
		}
		s.line("- %s, %s: %s", c.Author, when(c.CreatedAt, now), c.Content)
		s.line("  +%d%s -%d%s  (#%d)%s",
			c.LikesCount, marker(c.UserLikeStatus, blog.LikeStatusLike),
			c.DislikesCount, marker(c.UserLikeStatus, blog.LikeStatusDislike),
			c.ID, del)
	}
	return s.flush(w)
}
