package store

import (
	"context"
	"strings"

	"go.uber.org/multierr"
)

// FetchBlogAndComments loads one post and then its comments. The two reads
// fail independently: either error is logged and returned, neither lands
// in BlogError. Switching to another post first clears the old detail so
// a failed read shows nothing rather than the previous post, and drops any
// like status still in flight for it.
func (s *Store) FetchBlogAndComments(ctx context.Context, id int) error {
	g := s.detailGen.Add(1)
	s.state.setStateWhen(func(st State) bool {
		return s.detailGen.Load() == g && st.CurrentBlog != nil && st.CurrentBlog.ID != id
	}, func(*State) { s.statusGen.Add(1) },
		SetCurrentBlog(nil), SetBlogComments(nil), SetUserLikeStatus(""))

	var errs error

	post, err := s.api.GetPost(ctx, id)
	if err != nil {
		s.Logger.Errorw("fetch post failed",
			"postID", id,
			"error", err)
		errs = multierr.Append(errs, err)
	} else if !s.setIfCurrent(&s.detailGen, g, SetCurrentBlog(post)) {
		return ErrStaleResponse
	}

	comments, err := s.api.ListComments(ctx, id)
	if err != nil {
		s.Logger.Errorw("fetch comments failed",
			"postID", id,
			"error", err)
		errs = multierr.Append(errs, err)
	} else if !s.setIfCurrent(&s.detailGen, g, SetBlogComments(comments)) {
		return ErrStaleResponse
	}

	return errs
}

// FetchUserLikeStatus reads the current user's vote on a post. Without a
// session the status is reset to absent and nothing is sent. An answer for
// a post other than the one on screen is dropped.
func (s *Store) FetchUserLikeStatus(ctx context.Context, id int) error {
	g := s.statusGen.Add(1)
	token, _, ok := s.session()
	if !ok {
		s.state.SetState(SetUserLikeStatus(""))
		return nil
	}

	status, err := s.api.PostLikeStatus(ctx, token, id)
	if err != nil {
		s.Logger.Errorw("fetch like status failed",
			"postID", id,
			"error", err)
		return err
	}
	if !s.state.setStateWhen(func(st State) bool {
		return s.statusGen.Load() == g && (st.CurrentBlog == nil || st.CurrentBlog.ID == id)
	}, SetUserLikeStatus(status)) {
		return ErrStaleResponse
	}
	return nil
}

// SubmitComment returns true only once the server accepted the comment and
// the detail was re-read; views clear their input on true.
func (s *Store) SubmitComment(ctx context.Context, id int, content string) bool {
	token, _, ok := s.session()
	if !ok {
		s.alerts.Alert(MsgLoginToComment)
		return false
	}
	if strings.TrimSpace(content) == "" {
		return false
	}

	if _, err := s.api.CreateComment(ctx, token, id, content); err != nil {
		s.Logger.Errorw("post comment failed",
			"postID", id,
			"error", err)
		return false
	}
	_ = s.FetchBlogAndComments(ctx, id)
	return true
}

// DeleteComment relies on the server to enforce ownership.
func (s *Store) DeleteComment(ctx context.Context, blogID, commentID int) bool {
	token, _, ok := s.session()
	if !ok {
		return false
	}
	if err := s.api.DeleteComment(ctx, token, commentID); err != nil {
		s.Logger.Errorw("delete comment failed",
			"commentID", commentID,
			"error", err)
		return false
	}
	_ = s.FetchBlogAndComments(ctx, blogID)
	return true
}

// HandleBlogLikeToggle sends the wanted direction only; the server decides
// whether that sets, flips or clears the vote. Counts come back through
// the re-fetch, never by local arithmetic.
func (s *Store) HandleBlogLikeToggle(ctx context.Context, id int, isLike bool) bool {
	token, _, ok := s.session()
	if !ok {
		s.state.SetState(SetBlogError(MsgLoginToLikePost))
		return false
	}
	if err := s.api.LikePost(ctx, token, id, isLike); err != nil {
		s.Logger.Errorw("like post failed",
			"postID", id,
			"error", err)
		return false
	}
	_ = s.FetchBlogs(ctx)
	_ = s.FetchBlogAndComments(ctx, id)
	_ = s.FetchUserLikeStatus(ctx, id)
	return true
}

func (s *Store) HandleCommentLikeToggle(ctx context.Context, blogID, commentID int, isLike bool) bool {
	token, _, ok := s.session()
	if !ok {
		s.alerts.Alert(MsgLoginToLikeComment)
		return false
	}
	if err := s.api.LikeComment(ctx, token, commentID, isLike); err != nil {
		s.Logger.Errorw("like comment failed",
			"commentID", commentID,
			"error", err)
		return false
	}
	_ = s.FetchBlogAndComments(ctx, blogID)
	return true
}
