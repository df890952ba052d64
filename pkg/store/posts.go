package store

import (
	"context"
	"errors"
	"net/http"

	"plantblog/pkg/api"
	"plantblog/pkg/blog"
)

// FetchBlogs replaces the whole list. On failure the previous list stays
// and BlogError is set.
func (s *Store) FetchBlogs(ctx context.Context) error {
	g := s.listGen.Add(1)
	posts, err := s.api.ListPosts(ctx)
	if err != nil {
		s.Logger.Errorw("fetch blogs failed", "error", err)
		s.setIfCurrent(&s.listGen, g, SetBlogError(MsgLoadBlogsFailed))
		return err
	}
	if !s.setIfCurrent(&s.listGen, g, SetBlogs(posts), ClearBlogError()) {
		return ErrStaleResponse
	}
	return nil
}

func (s *Store) CreateBlogPost(ctx context.Context, in blog.PostInput) bool {
	token, user, ok := s.session()
	if !ok {
		s.state.SetState(SetBlogError(MsgLoginToCreate))
		return false
	}
	if err := blog.Validate(in); err != nil {
		s.state.SetState(SetBlogError(err.Error()))
		return false
	}

	if _, err := s.api.CreatePost(ctx, token, user.ID, in); err != nil {
		s.Logger.Errorw("create post failed", "error", err)
		s.state.SetState(SetBlogError(api.MessageOr(err, MsgCreateFailed)))
		return false
	}

	err := s.FetchBlogs(ctx)
	if err == nil || errors.Is(err, ErrStaleResponse) {
		s.state.SetState(ClearBlogError())
	}
	return true
}

// EditBlogPost replaces title, content and image of a post, then refreshes
// both the list and the detail view.
func (s *Store) EditBlogPost(ctx context.Context, id int, in blog.PostInput) bool {
	token, _, ok := s.session()
	if !ok {
		s.state.SetState(SetBlogError(MsgLoginToEdit))
		return false
	}
	if err := blog.Validate(in); err != nil {
		s.state.SetState(SetBlogError(err.Error()))
		return false
	}

	if err := s.api.EditPost(ctx, token, id, in); err != nil {
		s.Logger.Errorw("edit post failed",
			"postID", id,
			"error", err)
		s.state.SetState(SetBlogError(api.MessageOr(err, MsgEditFailed)))
		return false
	}

	_ = s.FetchBlogs(ctx)
	_ = s.FetchBlogAndComments(ctx, id)
	return true
}

// DeleteBlog succeeds only on a 200 answer; any other status, including
// other 2xx codes, counts as failure.
func (s *Store) DeleteBlog(ctx context.Context, id int) bool {
	token, _, ok := s.session()
	if !ok {
		s.Logger.Infow("delete post without session", "postID", id)
		return false
	}

	status, err := s.api.DeletePost(ctx, token, id)
	if err != nil || status != http.StatusOK {
		s.Logger.Errorw("delete post failed",
			"postID", id,
			"status", status,
			"error", err)
		return false
	}

	_ = s.FetchBlogs(ctx)
	return true
}
