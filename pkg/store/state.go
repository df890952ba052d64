package store

import (
	"slices"
	"sort"
	"sync"

	"plantblog/pkg/blog"
)

// State is the client's mirror of server truth plus the session. Empty
// strings and nil pointers mean "absent".
type State struct {
	Token          string
	CurrentUser    *blog.User
	Blogs          []blog.Post
	CurrentBlog    *blog.Post
	BlogComments   []blog.Comment
	UserLikeStatus blog.LikeStatus
	BlogError      string
}

func (s State) LoggedIn() bool {
	return s.Token != "" && s.CurrentUser != nil
}

func (s State) IsAuthor(p blog.Post) bool {
	return s.LoggedIn() && s.CurrentUser.ID == p.AuthorID
}

func (s State) OwnsComment(c blog.Comment) bool {
	return s.LoggedIn() && s.CurrentUser.ID == c.UserID
}

func (s State) clone() State {
	out := s
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		out.CurrentUser = &u
	}
	if s.CurrentBlog != nil {
		p := *s.CurrentBlog
		out.CurrentBlog = &p
	}
	out.Blogs = slices.Clone(s.Blogs)
	out.BlogComments = slices.Clone(s.BlogComments)
	return out
}

// Update changes the fields it names and nothing else.
type Update func(*State)

func SetSession(token string, user *blog.User) Update {
	return func(s *State) {
		s.Token = token
		s.CurrentUser = user
	}
}

func ClearSession() Update {
	return func(s *State) {
		s.Token = ""
		s.CurrentUser = nil
	}
}

func SetBlogs(posts []blog.Post) Update {
	return func(s *State) { s.Blogs = posts }
}

func SetCurrentBlog(p *blog.Post) Update {
	return func(s *State) { s.CurrentBlog = p }
}

func SetBlogComments(comments []blog.Comment) Update {
	return func(s *State) { s.BlogComments = comments }
}

func SetUserLikeStatus(status blog.LikeStatus) Update {
	return func(s *State) { s.UserLikeStatus = status }
}

func SetBlogError(msg string) Update {
	return func(s *State) { s.BlogError = msg }
}

func ClearBlogError() Update {
	return SetBlogError("")
}

// Container holds the State and fans changes out to subscribers. Updates
// are shallow merges; subscribers run after each merge, outside the lock,
// before SetState returns on the goroutine that delivers.
//
// Every merge bumps a version. Only one goroutine delivers at a time, and
// it keeps delivering the newest snapshot until the delivered version
// catches up, so a subscriber never ends on an older state than the
// container holds. A merge that lands while another goroutine is
// delivering is handed to that goroutine; intermediate versions may be
// skipped.
type Container struct {
	mu          sync.RWMutex
	state       State
	version     uint64
	subscribers map[int64]func(State)
	nextSubID   int64

	notifyMu   sync.Mutex
	delivering bool
	delivered  uint64
}

func NewContainer(initial State) *Container {
	return &Container{
		state:       initial,
		subscribers: make(map[int64]func(State)),
	}
}

func (c *Container) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

func (c *Container) SetState(updates ...Update) {
	c.setStateWhen(nil, updates...)
}

// setStateWhen applies updates only if cond holds for the current state.
// cond and the merge run under one lock so no other write can slip between.
func (c *Container) setStateWhen(cond func(State) bool, updates ...Update) bool {
	c.mu.Lock()
	if cond != nil && !cond(c.state) {
		c.mu.Unlock()
		return false
	}
	for _, u := range updates {
		u(&c.state)
	}
	c.version++
	c.mu.Unlock()

	c.notify()
	return true
}

func (c *Container) notify() {
	c.notifyMu.Lock()
	if c.delivering {
		c.notifyMu.Unlock()
		return
	}
	c.delivering = true
	for {
		// read under notifyMu: a merge after this point finds delivering
		// unset and delivers itself
		c.mu.RLock()
		v := c.version
		snap := c.state.clone()
		subs := c.sortedSubscribers()
		c.mu.RUnlock()

		if v == c.delivered {
			c.delivering = false
			c.notifyMu.Unlock()
			return
		}
		c.delivered = v
		c.notifyMu.Unlock()

		for _, fn := range subs {
			fn(snap)
		}
		c.notifyMu.Lock()
	}
}

func (c *Container) sortedSubscribers() []func(State) {
	ids := make([]int64, 0, len(c.subscribers))
	for id := range c.subscribers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	subs := make([]func(State), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, c.subscribers[id])
	}
	return subs
}

// Subscribe registers fn for every future change and returns a function
// that removes it again.
func (c *Container) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
		})
	}
}
