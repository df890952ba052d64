package api

import (
	"context"
	"fmt"
	"net/http"

	"plantblog/pkg/blog"
)

type createPostRequest struct {
	blog.PostInput
	AuthorID int `json:"author_id"`
}

// editPostRequest always carries every field; an empty image_url clears it.
type editPostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

type likeRequest struct {
	IsLike bool `json:"is_like"`
}

type likeStatusResponse struct {
	Status *string `json:"status"`
}

func (c *Client) ListPosts(ctx context.Context) ([]blog.Post, error) {
	posts := make([]blog.Post, 0)
	if _, err := c.do(ctx, "list posts", http.MethodGet, "/api/blog_posts", "", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) GetPost(ctx context.Context, id int) (*blog.Post, error) {
	p := &blog.Post{}
	path := fmt.Sprintf("/api/blog_posts/%d", id)
	if _, err := c.do(ctx, "get post", http.MethodGet, path, "", nil, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Client) CreatePost(ctx context.Context, token string, authorID int, in blog.PostInput) (*blog.Post, error) {
	p := &blog.Post{}
	req := createPostRequest{PostInput: in, AuthorID: authorID}
	if _, err := c.do(ctx, "create post", http.MethodPost, "/api/blog_posts", token, req, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Client) EditPost(ctx context.Context, token string, id int, in blog.PostInput) error {
	path := fmt.Sprintf("/api/blog_posts/%d/edit", id)
	req := editPostRequest{Title: in.Title, Content: in.Content, ImageURL: in.ImageURL}
	_, err := c.do(ctx, "edit post", http.MethodPut, path, token, req, nil)
	return err
}

// DeletePost returns the response status alongside the error so callers
// can apply a stricter success rule than "any 2xx".
func (c *Client) DeletePost(ctx context.Context, token string, id int) (int, error) {
	path := fmt.Sprintf("/api/delete_blog/%d", id)
	return c.do(ctx, "delete post", http.MethodDelete, path, token, nil, nil)
}

func (c *Client) LikePost(ctx context.Context, token string, id int, isLike bool) error {
	path := fmt.Sprintf("/api/blog_posts/%d/like", id)
	_, err := c.do(ctx, "like post", http.MethodPost, path, token, likeRequest{IsLike: isLike}, nil)
	return err
}

func (c *Client) PostLikeStatus(ctx context.Context, token string, id int) (blog.LikeStatus, error) {
	resp := likeStatusResponse{}
	path := fmt.Sprintf("/api/blog_posts/%d/like_status", id)
	if _, err := c.do(ctx, "like status", http.MethodGet, path, token, nil, &resp); err != nil {
		return "", err
	}
	if resp.Status == nil {
		return blog.LikeStatusNone, nil
	}
	return blog.ParseLikeStatus(*resp.Status), nil
}
