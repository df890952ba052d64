package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"plantblog/pkg/api"
	"plantblog/pkg/blog"
	"plantblog/pkg/config"
	"plantblog/pkg/store"
	"plantblog/pkg/view"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
)

type CLI struct {
	Config string `help:"YAML config file." type:"path" short:"c" env:"PLANTBLOG_CONFIG"`
	Yes    bool   `help:"Answer yes to confirmation prompts." short:"y"`

	Posts         PostsCmd         `cmd:"" help:"List blog posts."`
	Show          ShowCmd          `cmd:"" help:"Show a post with its comments."`
	Create        CreateCmd        `cmd:"" help:"Create a blog post."`
	Edit          EditCmd          `cmd:"" help:"Edit one of your posts."`
	Delete        DeleteCmd        `cmd:"" help:"Delete one of your posts."`
	Like          LikeCmd          `cmd:"" help:"Like a post, or take the like back."`
	Dislike       DislikeCmd       `cmd:"" help:"Dislike a post, or take the dislike back."`
	Comment       CommentCmd       `cmd:"" help:"Comment on a post."`
	DeleteComment DeleteCommentCmd `cmd:"" name:"delete-comment" help:"Delete one of your comments."`
	LikeComment   LikeCommentCmd   `cmd:"" name:"like-comment" help:"Like or dislike a comment."`
	Signup        SignupCmd        `cmd:"" help:"Create an account."`
	Login         LoginCmd         `cmd:"" help:"Log in and remember the session."`
	Logout        LogoutCmd        `cmd:"" help:"Forget the stored session."`
	Check         CheckCmd         `cmd:"" help:"Check whether an email or username is still free."`
}

// app is what every command runs against.
type app struct {
	ctx     context.Context
	store   *store.Store
	logger  *zap.SugaredLogger
	out     io.Writer
	alerts  store.Alerter
	confirm view.Confirmer
	route   string
}

func (a *app) Navigate(route string) {
	a.logger.Debugw("navigate", "route", route)
	a.route = route
}

func (a *app) navbar() *view.Navbar {
	return &view.Navbar{Store: a.store, Nav: a}
}

func (a *app) postList() *view.PostList {
	return &view.PostList{Store: a.store, Alerts: a.alerts, Confirm: a.confirm}
}

func (a *app) postDetail(id int) *view.PostDetail {
	return &view.PostDetail{Store: a.store, Alerts: a.alerts, Confirm: a.confirm, Nav: a, ID: id}
}

func (a *app) showList() error {
	pl := a.postList()
	if err := pl.Mount(a.ctx); err != nil {
		a.logger.Debugw("list fetch failed", "error", err)
	}
	return pl.Render(a.out)
}

type PostsCmd struct{}

func (c *PostsCmd) Run(a *app) error {
	if err := a.navbar().Render(a.out); err != nil {
		return err
	}
	return a.showList()
}

type ShowCmd struct {
	ID int `arg:"" help:"Post id."`
}

func (c *ShowCmd) Run(a *app) error {
	pd := a.postDetail(c.ID)
	if err := pd.Mount(a.ctx); err != nil {
		a.logger.Debugw("detail fetch incomplete", "postID", c.ID, "error", err)
	}
	return pd.Render(a.out)
}

type CreateCmd struct {
	Title   string `help:"Post title." required:""`
	Content string `help:"Post body." required:""`
	Image   string `help:"Image URL." name:"image"`
}

func (c *CreateCmd) Run(a *app) error {
	pl := a.postList()
	pl.ToggleNewPost()
	pl.Form = blog.PostInput{Title: c.Title, Content: c.Content, ImageURL: c.Image}
	ok := pl.Submit(a.ctx)
	if err := pl.Render(a.out); err != nil {
		return err
	}
	if !ok {
		return errFailed
	}
	return nil
}

type EditCmd struct {
	ID         int    `arg:"" help:"Post id."`
	Title      string `help:"New title; empty keeps the current one."`
	Content    string `help:"New body; empty keeps the current one."`
	Image      string `help:"New image URL; empty keeps the current one." name:"image"`
	ClearImage bool   `help:"Remove the image." name:"clear-image"`
}

func (c *EditCmd) Run(a *app) error {
	pd := a.postDetail(c.ID)
	_ = pd.Mount(a.ctx)
	if !pd.StartEdit() {
		if !a.store.Snapshot().LoggedIn() {
			a.alerts.Alert(store.MsgLoginToEdit)
		} else {
			a.alerts.Alert("Only the author can edit this post")
		}
		return errFailed
	}
	if c.Title != "" {
		pd.Edit.Title = c.Title
	}
	if c.Content != "" {
		pd.Edit.Content = c.Content
	}
	switch {
	case c.ClearImage:
		pd.Edit.ImageURL = ""
	case c.Image != "":
		pd.Edit.ImageURL = c.Image
	}
	ok := pd.SubmitEdit(a.ctx)
	if err := pd.Render(a.out); err != nil {
		return err
	}
	if !ok {
		return errFailed
	}
	return nil
}

type DeleteCmd struct {
	ID int `arg:"" help:"Post id."`
}

func (c *DeleteCmd) Run(a *app) error {
	pd := a.postDetail(c.ID)
	if !pd.DeletePost(a.ctx) {
		return errFailed
	}
	if a.route == view.RouteBlog {
		return a.showList()
	}
	return nil
}

func toggleLike(a *app, id int, isLike bool) error {
	pd := a.postDetail(id)
	_ = pd.Mount(a.ctx)
	ok := pd.ToggleLike(a.ctx, isLike)
	if err := pd.Render(a.out); err != nil {
		return err
	}
	if !ok {
		return errFailed
	}
	return nil
}

type LikeCmd struct {
	ID int `arg:"" help:"Post id."`
}

func (c *LikeCmd) Run(a *app) error {
	return toggleLike(a, c.ID, true)
}

type DislikeCmd struct {
	ID int `arg:"" help:"Post id."`
}

func (c *DislikeCmd) Run(a *app) error {
	return toggleLike(a, c.ID, false)
}

type CommentCmd struct {
	ID   int      `arg:"" help:"Post id."`
	Text []string `arg:"" help:"Comment text."`
}

func (c *CommentCmd) Run(a *app) error {
	pd := a.postDetail(c.ID)
	_ = pd.Mount(a.ctx)
	pd.Comment = strings.Join(c.Text, " ")
	ok := pd.SubmitComment(a.ctx)
	if err := pd.Render(a.out); err != nil {
		return err
	}
	if !ok {
		return errFailed
	}
	return nil
}

type DeleteCommentCmd struct {
	PostID    int `arg:"" help:"Post id."`
	CommentID int `arg:"" help:"Comment id."`
}

func (c *DeleteCommentCmd) Run(a *app) error {
	pd := a.postDetail(c.PostID)
	_ = pd.Mount(a.ctx)
	ok := pd.DeleteComment(a.ctx, c.CommentID)
	if err := pd.Render(a.out); err != nil {
		return err
	}
	if !ok {
		return errFailed
	}
	return nil
}

type LikeCommentCmd struct {
	PostID    int  `arg:"" help:"Post id."`
	CommentID int  `arg:"" help:"Comment id."`
	Dislike   bool `help:"Dislike instead of like."`
}

func (c *LikeCommentCmd) Run(a *app) error {
	pd := a.postDetail(c.PostID)
	_ = pd.Mount(a.ctx)
	ok := pd.ToggleCommentLike(a.ctx, c.CommentID, !c.Dislike)
	if err := pd.Render(a.out); err != nil {
		return err
	}
	if !ok {
		return errFailed
	}
	return nil
}

type SignupCmd struct {
	Email    string `help:"Email address." required:""`
	Username string `help:"Username." required:""`
	Password string `help:"Password." required:"" env:"PLANTBLOG_PASSWORD"`
}

func (c *SignupCmd) Run(a *app) error {
	ok, err := a.store.SignUp(a.ctx, blog.NewUser{Email: c.Email, Username: c.Username, Password: c.Password})
	if err != nil {
		return err
	}
	if !ok {
		return errFailed
	}
	fmt.Fprintln(a.out, "Account created. Log in with: plantblog login", c.Username)
	return nil
}

type LoginCmd struct {
	Identifier string `arg:"" help:"Email or username."`
	Password   string `help:"Password." required:"" env:"PLANTBLOG_PASSWORD"`
}

func (c *LoginCmd) Run(a *app) error {
	ok, err := a.store.Login(a.ctx, c.Identifier, c.Password)
	if err != nil {
		return err
	}
	if !ok {
		return errFailed
	}
	return a.navbar().Render(a.out)
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(a *app) error {
	nav := a.navbar()
	nav.Logout(a.ctx)
	return nav.Render(a.out)
}

type CheckCmd struct {
	Field string `arg:"" enum:"email,username" help:"email or username."`
	Value string `arg:"" help:"Value to check."`
}

func (c *CheckCmd) Run(a *app) error {
	ok, err := a.store.CheckFieldAvailability(a.ctx, c.Field, c.Value)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(a.out, "%s %q is available\n", c.Field, c.Value)
	} else {
		fmt.Fprintf(a.out, "%s %q is taken\n", c.Field, c.Value)
	}
	return nil
}

// errFailed marks a command whose failure was already shown to the user.
var errFailed = errors.New("command failed")

type stdinConfirmer struct {
	yes bool
	in  *bufio.Reader
	out io.Writer
}

func (sc *stdinConfirmer) Confirm(msg string) bool {
	if sc.yes {
		return true
	}
	fmt.Fprintf(sc.out, "%s [y/N] ", msg)
	answer, err := sc.in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("plantblog"),
		kong.Description("Read and write the plant blog from the terminal."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Config)
	kctx.FatalIfErrorf(err)

	logger, err := cfg.Logger()
	kctx.FatalIfErrorf(err)

	storage, closeStorage, err := cfg.SessionStorage()
	kctx.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	alerts := store.AlertFunc(func(msg string) {
		fmt.Fprintln(os.Stderr, "!", msg)
	})
	client := api.NewClient(cfg.BackendURL, cfg.HTTPClient(), logger)
	a := &app{
		ctx:     ctx,
		store:   store.New(ctx, client, storage, store.WithAlerter(alerts), store.WithLogger(logger)),
		logger:  logger,
		out:     os.Stdout,
		alerts:  alerts,
		confirm: &stdinConfirmer{yes: cli.Yes, in: bufio.NewReader(os.Stdin), out: os.Stderr},
	}

	err = kctx.Run(a)
	stop()
	if cerr := closeStorage(); cerr != nil {
		logger.Errorw("close session storage", "error", cerr)
	}
	_ = logger.Sync()
	if errors.Is(err, errFailed) {
		os.Exit(1)
	}
	kctx.FatalIfErrorf(err)
}
