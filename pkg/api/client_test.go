package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"plantblog/pkg/blog"

	"github.com/google/uuid"
)

type recorded struct {
	method, path string
	auth, reqID  string
	body         []byte
}

func newTestServer(t *testing.T, status int, body string) (*Client, *[]recorded) {
	t.Helper()
	var got []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		js, _ := io.ReadAll(r.Body)
		got = append(got, recorded{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
			reqID:  r.Header.Get(RequestIDHeader),
			body:   js,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client(), nil), &got
}

func TestClient_Headers(t *testing.T) {
	c, got := newTestServer(t, http.StatusOK, `[]`)
	ctx := context.Background()

	if err := c.LikePost(ctx, "tok", 3, true); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ListPosts(ctx); err != nil {
		t.Fatal(err)
	}

	reqs := *got
	if reqs[0].method != http.MethodPost || reqs[0].path != "/api/blog_posts/3/like" {
		t.Errorf("unexpected request %s %s", reqs[0].method, reqs[0].path)
	}
	if reqs[0].auth != "Bearer tok" {
		t.Errorf("expected bearer token, got %q", reqs[0].auth)
	}
	if string(reqs[0].body) != `{"is_like":true}` {
		t.Errorf("unexpected body %s", reqs[0].body)
	}
	if reqs[1].auth != "" {
		t.Errorf("anonymous reads must not send a credential, got %q", reqs[1].auth)
	}
	for i, r := range reqs {
		if _, err := uuid.Parse(r.reqID); err != nil {
			t.Errorf("request %d: expected a uuid request id, got %q", i, r.reqID)
		}
	}
	if reqs[0].reqID == reqs[1].reqID {
		t.Errorf("expected a fresh request id per call")
	}
}

func TestClient_CreatePostBody(t *testing.T) {
	c, got := newTestServer(t, http.StatusCreated, `{"id":4,"title":"Fern"}`)

	p, err := c.CreatePost(context.Background(), "tok", 7, blog.PostInput{Title: "Fern", Content: "Moist soil"})
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != 4 {
		t.Errorf("expected decoded post, got %+v", p)
	}

	body := map[string]any{}
	if err := json.Unmarshal((*got)[0].body, &body); err != nil {
		t.Fatal(err)
	}
	if body["author_id"] != float64(7) || body["title"] != "Fern" || body["content"] != "Moist soil" {
		t.Errorf("unexpected body %v", body)
	}
	if _, ok := body["image_url"]; ok {
		t.Errorf("empty image_url must be omitted on create, got %v", body)
	}
}

func TestClient_EditPostSendsEmptyImage(t *testing.T) {
	c, got := newTestServer(t, http.StatusOK, `{"message":"ok"}`)

	if err := c.EditPost(context.Background(), "tok", 4, blog.PostInput{Title: "Fern", Content: "x"}); err != nil {
		t.Fatal(err)
	}
	body := map[string]any{}
	_ = json.Unmarshal((*got)[0].body, &body)
	if v, ok := body["image_url"]; !ok || v != "" {
		t.Errorf("expected image_url to be sent empty, got %v", body)
	}
	if (*got)[0].method != http.MethodPut || (*got)[0].path != "/api/blog_posts/4/edit" {
		t.Errorf("unexpected request %s %s", (*got)[0].method, (*got)[0].path)
	}
}

func TestClient_StatusErrors(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		message    string
		structured bool
	}{
		{"error field", http.StatusBadRequest, `{"error":"Title is required"}`, "Title is required", true},
		{"message field", http.StatusForbidden, `{"message":"Unauthorized: You are not the author"}`, "Unauthorized: You are not the author", true},
		{"error wins", http.StatusConflict, `{"error":"first","message":"second"}`, "first", true},
		{"empty json", http.StatusInternalServerError, `{}`, "", false},
		{"html", http.StatusBadGateway, `<html>bad gateway</html>`, "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			client, _ := newTestServer(t, c.status, c.body)
			_, err := client.GetPost(context.Background(), 1)

			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StatusError, got %T %v", err, err)
			}
			if se.StatusCode != c.status || se.Message != c.message || se.Structured != c.structured {
				t.Errorf("unexpected error %+v", se)
			}
			if StatusCode(err) != c.status {
				t.Errorf("expected StatusCode %d, got %d", c.status, StatusCode(err))
			}
			if IsTransport(err) {
				t.Errorf("status errors are not transport errors")
			}
			want := c.message
			if !c.structured {
				want = "fallback"
			}
			if got := MessageOr(err, "fallback"); got != want {
				t.Errorf("expected %q, got %q", want, got)
			}
		})
	}
}

func TestClient_TransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := NewClient(srv.URL, srv.Client(), nil)
	srv.Close()

	_, err := c.ListPosts(context.Background())
	if !IsTransport(err) {
		t.Errorf("expected transport error, got %v", err)
	}
	if StatusCode(err) != 0 {
		t.Errorf("expected no status, got %d", StatusCode(err))
	}
	if got := MessageOr(err, "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}

	bad, _ := newTestServer(t, http.StatusOK, `not json`)
	if _, err := bad.ListPosts(context.Background()); !IsTransport(err) {
		t.Errorf("expected undecodable body to be a transport error, got %v", err)
	}
}

func TestClient_Login(t *testing.T) {
	c, got := newTestServer(t, http.StatusOK, `{"token":"t1","userData":{"id":1,"username":"alice","email":"alice@example.com"}}`)
	res, err := c.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if res.Token != "t1" || res.User.ID != 1 || res.User.Username != "alice" {
		t.Errorf("unexpected result %+v", res)
	}
	if string((*got)[0].body) != `{"loginIdentifier":"alice","password":"pw"}` {
		t.Errorf("unexpected body %s", (*got)[0].body)
	}

	created, _ := newTestServer(t, http.StatusCreated, `{"token":"t1","userData":{"id":1}}`)
	if _, err := created.Login(context.Background(), "alice", "pw"); StatusCode(err) != http.StatusCreated {
		t.Errorf("expected a 201 login to fail with its status, got %v", err)
	}

	empty, _ := newTestServer(t, http.StatusOK, `{"userData":{"id":1}}`)
	if _, err := empty.Login(context.Background(), "alice", "pw"); !errors.Is(err, ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}

func TestClient_PostLikeStatus(t *testing.T) {
	cases := []struct {
		body string
		want blog.LikeStatus
	}{
		{`{"status":"like"}`, blog.LikeStatusLike},
		{`{"status":"dislike"}`, blog.LikeStatusDislike},
		{`{"status":"none"}`, blog.LikeStatusNone},
		{`{"status":null}`, blog.LikeStatusNone},
		{`{}`, blog.LikeStatusNone},
		{`{"status":"love"}`, blog.LikeStatusNone},
	}
	for _, c := range cases {
		client, _ := newTestServer(t, http.StatusOK, c.body)
		got, err := client.PostLikeStatus(context.Background(), "tok", 1)
		if err != nil {
			t.Fatalf("%s: %v", c.body, err)
		}
		if got != c.want {
			t.Errorf("%s: expected %q, got %q", c.body, c.want, got)
		}
	}
}

func TestClient_DeletePostStatus(t *testing.T) {
	c, _ := newTestServer(t, http.StatusNoContent, ``)
	status, err := c.DeletePost(context.Background(), "tok", 2)
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusNoContent {
		t.Errorf("expected status 204 to be reported, got %d", status)
	}
}

func TestClient_CheckAvailability(t *testing.T) {
	c, got := newTestServer(t, http.StatusOK, `{"available":true}`)
	ok, err := c.CheckAvailability(context.Background(), "username", "rose")
	if err != nil || !ok {
		t.Errorf("expected available, got ok=%v err=%v", ok, err)
	}
	if string((*got)[0].body) != `{"field":"username","value":"rose"}` {
		t.Errorf("unexpected body %s", (*got)[0].body)
	}
}
