package api

import (
	"context"
	"fmt"
	"net/http"

	"plantblog/pkg/blog"
)

type commentRequest struct {
	Content string `json:"content"`
}

func (c *Client) ListComments(ctx context.Context, postID int) ([]blog.Comment, error) {
	comments := make([]blog.Comment, 0)
	path := fmt.Sprintf("/api/blog_posts/%d/comments", postID)
	if _, err := c.do(ctx, "list comments", http.MethodGet, path, "", nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) CreateComment(ctx context.Context, token string, postID int, content string) (*blog.Comment, error) {
	cm := &blog.Comment{}
	path := fmt.Sprintf("/api/blog_posts/%d/comments", postID)
	if _, err := c.do(ctx, "post comment", http.MethodPost, path, token, commentRequest{Content: content}, cm); err != nil {
		return nil, err
	}
	return cm, nil
}

func (c *Client) DeleteComment(ctx context.Context, token string, commentID int) error {
	path := fmt.Sprintf("/api/comments/%d", commentID)
	_, err := c.do(ctx, "delete comment", http.MethodDelete, path, token, nil, nil)
	return err
}

func (c *Client) LikeComment(ctx context.Context, token string, commentID int, isLike bool) error {
	path := fmt.Sprintf("/api/comments/%d/like", commentID)
	_, err := c.do(ctx, "like comment", http.MethodPost, path, token, likeRequest{IsLike: isLike}, nil)
	return err
}
