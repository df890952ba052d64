package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"plantblog/pkg/api"
	"plantblog/pkg/blog"
	"plantblog/pkg/fakeapi"
	"plantblog/pkg/session"
)

// testEnv wires a Store to the fake API through a real HTTP server. Routes
// can be overridden per "METHOD /path" to inject failures.
type testEnv struct {
	t       *testing.T
	fake    *fakeapi.Server
	srv     *httptest.Server
	storage *session.MemoryStorage
	store   *Store

	mu        sync.Mutex
	requests  []string
	overrides map[string]http.HandlerFunc
	alerts    []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		t:         t,
		fake:      fakeapi.New([]byte("test-secret"), nil),
		storage:   session.NewMemoryStorage(),
		overrides: make(map[string]http.HandlerFunc),
	}
	env.srv = httptest.NewServer(http.HandlerFunc(env.serve))
	t.Cleanup(env.srv.Close)
	env.store = env.newStore()
	return env
}

func (env *testEnv) newStore() *Store {
	client := api.NewClient(env.srv.URL, env.srv.Client(), nil)
	return New(context.Background(), client, env.storage, WithAlerter(AlertFunc(func(msg string) {
		env.mu.Lock()
		env.alerts = append(env.alerts, msg)
		env.mu.Unlock()
	})))
}

func (env *testEnv) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	env.mu.Lock()
	env.requests = append(env.requests, key)
	override := env.overrides[key]
	env.mu.Unlock()

	if override != nil {
		override(w, r)
		return
	}
	env.fake.Handler.ServeHTTP(w, r)
}

func (env *testEnv) override(key string, h http.HandlerFunc) {
	env.mu.Lock()
	env.overrides[key] = h
	env.mu.Unlock()
}

// holdFirst parks the first request to key until release is closed and then
// answers it with body. Later requests reach the fake server.
func (env *testEnv) holdFirst(key, body string) (arrived, release chan struct{}) {
	arrived = make(chan struct{})
	release = make(chan struct{})
	var once sync.Once
	env.override(key, func(w http.ResponseWriter, r *http.Request) {
		first := false
		once.Do(func() { first = true })
		if !first {
			env.fake.Handler.ServeHTTP(w, r)
			return
		}
		close(arrived)
		<-release
		writeJSON(w, http.StatusOK, body)
	})
	return arrived, release
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("%s never arrived", what)
	}
}

func (env *testEnv) clearOverrides() {
	env.mu.Lock()
	env.overrides = make(map[string]http.HandlerFunc)
	env.mu.Unlock()
}

func (env *testEnv) requestLog() []string {
	env.mu.Lock()
	defer env.mu.Unlock()
	return append([]string(nil), env.requests...)
}

func (env *testEnv) resetRequests() {
	env.mu.Lock()
	env.requests = nil
	env.mu.Unlock()
}

func (env *testEnv) alertLog() []string {
	env.mu.Lock()
	defer env.mu.Unlock()
	return append([]string(nil), env.alerts...)
}

func (env *testEnv) addUser(email, username, password string) *blog.User {
	env.t.Helper()
	u, err := env.fake.Repo.AddUser(blog.NewUser{Email: email, Username: username, Password: password})
	if err != nil {
		env.t.Fatalf("add user: %v", err)
	}
	return u
}

func (env *testEnv) addPost(authorID int, title string) *blog.Post {
	env.t.Helper()
	p, err := env.fake.Repo.AddPost(authorID, blog.PostInput{Title: title, Content: title + " care notes"})
	if err != nil {
		env.t.Fatalf("add post: %v", err)
	}
	return p
}

// loginAs creates the user on the server and logs the store in.
func (env *testEnv) loginAs(email, username string) *blog.User {
	env.t.Helper()
	u := env.addUser(email, username, "secret123")
	ok, err := env.store.Login(context.Background(), email, "secret123")
	if err != nil || !ok {
		env.t.Fatalf("login: ok=%v err=%v", ok, err)
	}
	return u
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
