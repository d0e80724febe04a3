// Package main is the MediaKeeper interactive client: it restores the last
// session, then runs a line-oriented shell over the client core.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/atinyakov/MediaKeeper/internal/client/api"
	"github.com/atinyakov/MediaKeeper/internal/client/app"
	"github.com/atinyakov/MediaKeeper/internal/client/auth"
	"github.com/atinyakov/MediaKeeper/internal/client/catalog"
	"github.com/atinyakov/MediaKeeper/internal/client/navigation"
	"github.com/atinyakov/MediaKeeper/internal/client/prompt"
	"github.com/atinyakov/MediaKeeper/internal/client/session"
	"github.com/atinyakov/MediaKeeper/internal/config"
	"github.com/atinyakov/MediaKeeper/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "-version" {
		fmt.Printf("MediaKeeper Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	opts, err := config.ParseClient(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.New()
	if err := log.InitConsole(opts.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Log.Sync() }()

	slot, closeSlot := newSlot(opts)
	defer closeSlot()

	client, err := api.New(api.Config{
		BaseURL:           opts.BaseURL,
		Timeout:           opts.Timeout,
		RequestsPerSecond: opts.RequestsPerSecond,
		CAFile:            opts.CAFile,
		Logger:            log.Log.Named("api"),
	})
	if err != nil {
		log.Log.Fatal("failed to build API client", zap.Error(err))
	}

	store := session.NewStore(slot, log.Log.Named("session"))
	remote := catalog.NewRemote(client, opts.CatalogPath)
	nav := navigation.NewLog(log.Log.Named("nav"))
	a := app.New(
		store,
		auth.NewGateway(client, store, log.Log.Named("auth")),
		catalog.NewModel(remote, log.Log.Named("catalog")),
		remote,
		nav,
		log.Log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sh := &shell{app: a, nav: nav, prompt: prompt.New(os.Stdin, os.Stdout), out: os.Stdout}
	if id, err := a.Bootstrap(ctx); id != nil {
		fmt.Printf("Welcome back, %s.\n", id.Username)
		if err != nil {
			sh.fail(err)
		}
	}
	sh.run(ctx)
}

// newSlot picks the durable session slot: redis when configured, a file otherwise.
func newSlot(opts *config.ClientOptions) (session.Slot, func()) {
	if opts.RedisAddr == "" {
		return session.NewFileSlot(opts.SessionFile), func() {}
	}
	rdb := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
	return session.NewRedisSlot(rdb, opts.RedisKey), func() { _ = rdb.Close() }
}
