package fakeapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"plantblog/pkg/blog"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPostNotFound     = errors.New("Blog not found")
	ErrCommentNotFound  = errors.New("Comment not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserAlready      = errors.New("already exist")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrUnknownField     = errors.New("unknown field")
	ErrAuthorNotFound   = errors.New("Author not found")
	ErrEmptyCommentBody = errors.New("content is required")
)

const timeLayout = "2006-01-02T15:04:05"

type userRecord struct {
	blog.User
	PasswordHash []byte
}

type postRecord struct {
	ID       int
	Title    string
	Content  string
	ImageURL string
	AuthorID int
	Created  time.Time
}

type commentRecord struct {
	ID      int
	Content string
	UserID  int
	PostID  int
	Created time.Time
}

type voteKey struct {
	UserID   int
	TargetID int
}

// PostEdit holds the fields an edit may replace; nil means keep.
type PostEdit struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url"`
}

// MemoryRepo is the whole server-side data set, kept in maps the way a
// relational schema would: users, posts, comments and one vote table per
// target kind with a (user, target) uniqueness rule.
type MemoryRepo struct {
	users        map[int]*userRecord
	posts        map[int]*postRecord
	comments     map[int]*commentRecord
	postVotes    map[voteKey]bool
	commentVotes map[voteKey]bool
	nextID       int
	now          func() time.Time
	mu           sync.RWMutex
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:        make(map[int]*userRecord),
		posts:        make(map[int]*postRecord),
		comments:     make(map[int]*commentRecord),
		postVotes:    make(map[voteKey]bool),
		commentVotes: make(map[voteKey]bool),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (repo *MemoryRepo) id() int {
	repo.nextID++
	return repo.nextID
}

func (repo *MemoryRepo) findUserLocked(identifier string) *userRecord {
	for _, u := range repo.users {
		if u.Email == identifier || u.Username == identifier {
			return u
		}
	}
	return nil
}

func (repo *MemoryRepo) AddUser(u blog.NewUser) (*blog.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.findUserLocked(u.Email) != nil || repo.findUserLocked(u.Username) != nil {
		return nil, ErrUserAlready
	}
	rec := &userRecord{
		User:         blog.User{ID: repo.id(), Username: u.Username, Email: u.Email},
		PasswordHash: hash,
	}
	repo.users[rec.ID] = rec
	user := rec.User
	return &user, nil
}

// CheckUser authenticates by email or username.
func (repo *MemoryRepo) CheckUser(identifier, password string) (*blog.User, error) {
	repo.mu.RLock()
	rec := repo.findUserLocked(identifier)
	repo.mu.RUnlock()
	if rec == nil {
		return nil, ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}
	user := rec.User
	return &user, nil
}

func (repo *MemoryRepo) GetUser(id int) (*blog.User, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	rec, ok := repo.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := rec.User
	return &user, nil
}

func (repo *MemoryRepo) Available(field, value string) (bool, error) {
	if field != "email" && field != "username" {
		return false, ErrUnknownField
	}
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	for _, u := range repo.users {
		if (field == "email" && u.Email == value) || (field == "username" && u.Username == value) {
			return false, nil
		}
	}
	return true, nil
}

func countVotes(votes map[voteKey]bool, target int) (likes, dislikes int) {
	for k, isLike := range votes {
		if k.TargetID != target {
			continue
		}
		if isLike {
			likes++
		} else {
			dislikes++
		}
	}
	return likes, dislikes
}

func (repo *MemoryRepo) serializePostLocked(p *postRecord) blog.Post {
	likes, dislikes := countVotes(repo.postVotes, p.ID)
	comments := 0
	for _, c := range repo.comments {
		if c.PostID == p.ID {
			comments++
		}
	}
	author := ""
	if u, ok := repo.users[p.AuthorID]; ok {
		author = u.Username
	}
	return blog.Post{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		ImageURL:      p.ImageURL,
		AuthorID:      p.AuthorID,
		Author:        author,
		CreatedAt:     p.Created.Format(timeLayout),
		LikesCount:    likes,
		DislikesCount: dislikes,
		CommentsCount: comments,
	}
}

func (repo *MemoryRepo) serializeCommentLocked(c *commentRecord) blog.Comment {
	likes, dislikes := countVotes(repo.commentVotes, c.ID)
	author := ""
	if u, ok := repo.users[c.UserID]; ok {
		author = u.Username
	}
	return blog.Comment{
		ID:            c.ID,
		Content:       c.Content,
		UserID:        c.UserID,
		PostID:        c.PostID,
		Author:        author,
		CreatedAt:     c.Created.Format(timeLayout),
		LikesCount:    likes,
		DislikesCount: dislikes,
	}
}

// ListPosts returns posts in insertion order.
func (repo *MemoryRepo) ListPosts() []blog.Post {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	ids := make([]int, 0, len(repo.posts))
	for id := range repo.posts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	posts := make([]blog.Post, 0, len(ids))
	for _, id := range ids {
		posts = append(posts, repo.serializePostLocked(repo.posts[id]))
	}
	return posts
}

func (repo *MemoryRepo) GetPost(id int) (*blog.Post, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	p, ok := repo.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	post := repo.serializePostLocked(p)
	return &post, nil
}

func (repo *MemoryRepo) AddPost(authorID int, in blog.PostInput) (*blog.Post, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.users[authorID]; !ok {
		return nil, ErrAuthorNotFound
	}
	p := &postRecord{
		ID:       repo.id(),
		Title:    in.Title,
		Content:  in.Content,
		ImageURL: in.ImageURL,
		AuthorID: authorID,
		Created:  repo.now(),
	}
	repo.posts[p.ID] = p
	post := repo.serializePostLocked(p)
	return &post, nil
}

func (repo *MemoryRepo) EditPost(id, userID int, edit PostEdit) (*blog.Post, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	p, ok := repo.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	if p.AuthorID != userID {
		return nil, ErrAccessDenied
	}
	if edit.Title != nil {
		p.Title = *edit.Title
	}
	if edit.Content != nil {
		p.Content = *edit.Content
	}
	if edit.ImageURL != nil {
		p.ImageURL = *edit.ImageURL
	}
	post := repo.serializePostLocked(p)
	return &post, nil
}

// DeletePost removes the post together with its comments and all votes
// hanging off either.
func (repo *MemoryRepo) DeletePost(id, userID int) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	p, ok := repo.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	if p.AuthorID != userID {
		return ErrAccessDenied
	}
	for cid, c := range repo.comments {
		if c.PostID == id {
			repo.deleteCommentLocked(cid)
		}
	}
	for k := range repo.postVotes {
		if k.TargetID == id {
			delete(repo.postVotes, k)
		}
	}
	delete(repo.posts, id)
	return nil
}

// toggleVote applies the toggle rule: the same direction again clears the
// vote, the opposite direction flips it.
func toggleVote(votes map[voteKey]bool, key voteKey, isLike bool) {
	if current, ok := votes[key]; ok && current == isLike {
		delete(votes, key)
		return
	}
	votes[key] = isLike
}

func (repo *MemoryRepo) TogglePostVote(postID, userID int, isLike bool) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.posts[postID]; !ok {
		return ErrPostNotFound
	}
	toggleVote(repo.postVotes, voteKey{UserID: userID, TargetID: postID}, isLike)
	return nil
}

func (repo *MemoryRepo) PostVoteStatus(postID, userID int) (blog.LikeStatus, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	if _, ok := repo.posts[postID]; !ok {
		return "", ErrPostNotFound
	}
	isLike, ok := repo.postVotes[voteKey{UserID: userID, TargetID: postID}]
	switch {
	case !ok:
		return blog.LikeStatusNone, nil
	case isLike:
		return blog.LikeStatusLike, nil
	}
	return blog.LikeStatusDislike, nil
}

func (repo *MemoryRepo) ListComments(postID int) []blog.Comment {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	ids := make([]int, 0)
	for id, c := range repo.comments {
		if c.PostID == postID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	comments := make([]blog.Comment, 0, len(ids))
	for _, id := range ids {
		comments = append(comments, repo.serializeCommentLocked(repo.comments[id]))
	}
	return comments
}

func (repo *MemoryRepo) AddComment(postID, userID int, content string) (*blog.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyCommentBody
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.posts[postID]; !ok {
		return nil, ErrPostNotFound
	}
	c := &commentRecord{
		ID:      repo.id(),
		Content: content,
		UserID:  userID,
		PostID:  postID,
		Created: repo.now(),
	}
	repo.comments[c.ID] = c
	comment := repo.serializeCommentLocked(c)
	return &comment, nil
}

func (repo *MemoryRepo) deleteCommentLocked(id int) {
	for k := range repo.commentVotes {
		if k.TargetID == id {
			delete(repo.commentVotes, k)
		}
	}
	delete(repo.comments, id)
}

func (repo *MemoryRepo) DeleteComment(id, userID int) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	c, ok := repo.comments[id]
	if !ok {
		return ErrCommentNotFound
	}
	if c.UserID != userID {
		return ErrAccessDenied
	}
	repo.deleteCommentLocked(id)
	return nil
}

func (repo *MemoryRepo) ToggleCommentVote(commentID, userID int, isLike bool) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.comments[commentID]; !ok {
		return ErrCommentNotFound
	}
	toggleVote(repo.commentVotes, voteKey{UserID: userID, TargetID: commentID}, isLike)
	return nil
}
