package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"plantblog/pkg/blog"
	"plantblog/pkg/config"
	"plantblog/pkg/fakeapi"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
)

type CLI struct {
	Config string `help:"YAML config file." type:"path" short:"c" env:"PLANTBLOG_CONFIG"`
	Addr   string `help:"Listen address; overrides dev_server.addr."`
	Seed   bool   `help:"Start with a demo user (demo / demo1234) and a few posts."`
}

func seed(repo *fakeapi.MemoryRepo, lg *zap.SugaredLogger) error {
	u, err := repo.AddUser(blog.NewUser{Email: "demo@example.com", Username: "demo", Password: "demo1234"})
	if err != nil {
		return err
	}
	posts := []blog.PostInput{
		{Title: "Monstera care", Content: "Bright, indirect light and a good soak once the top soil is dry."},
		{Title: "Rescuing an overwatered pothos", Content: "Trim the mushy roots, repot into dry mix and wait."},
		{Title: "Succulents in winter", Content: "Water less, give them the sunniest window you have."},
	}
	for _, in := range posts {
		if _, err := repo.AddPost(u.ID, in); err != nil {
			return err
		}
	}
	lg.Infow("seeded demo data",
		"userID", u.ID,
		"posts", len(posts))
	return nil
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("plantblog-dev"),
		kong.Description("In-memory plant blog API for local development."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Config)
	kctx.FatalIfErrorf(err)
	addr := cfg.DevServer.Addr
	if cli.Addr != "" {
		addr = cli.Addr
	}

	lg, err := cfg.Logger()
	kctx.FatalIfErrorf(err)
	defer lg.Sync()

	srv := fakeapi.New([]byte(cfg.DevServer.JWTSecret), lg)
	if cli.Seed {
		kctx.FatalIfErrorf(seed(srv.Repo, lg))
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			lg.Errorw("shutdown", "error", err)
		}
	}()

	lg.Infow("starting server",
		"addr", addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Errorw("ListenAndServe error", "error", err)
	}
}
