package main

import (
	"context"
	"hackerbot/app/config"
	"hackerbot/app/service/conversation"
	"hackerbot/app/service/engine"
	"hackerbot/app/service/locale"
	"hackerbot/app/service/queue"
	"hackerbot/app/service/reply"
	"hackerbot/app/service/topic"
	"hackerbot/app/service/typing"
	"hackerbot/app/ui"
	"hackerbot/app/util/mylog"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	di := do.New()
	defer di.Shutdown()

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	logFile, err := mylog.Init(cfg)
	if err != nil {
		log.Fatalf("logging init failed: %v", err)
	}
	defer logFile.Close()

	do.Provide(di, locale.New)
	do.Provide(di, topic.New)
	do.Provide(di, reply.New)
	do.Provide(di, typing.New)
	do.Provide(di, conversation.New)
	do.Provide(di, queue.New)
	do.Provide(di, engine.New)
	do.Provide(di, ui.New)

	// fail fast on broken catalog or topic data
	if _, err = do.Invoke[*conversation.Session](di); err != nil {
		log.Fatalf("conversation init failed: %v", err)
	}

	slog.Info("Service started",
		"locale", cfg.Chat.DefaultLocale,
		"topic", cfg.Chat.DefaultTopic,
		"typing_delay", cfg.Chat.TypingDelay)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		slog.Info("Shutting down...")

		cancel()
	}()

	g, gctx := errgroup.WithContext(appCtx)

	g.Go(func() error {
		do.MustInvoke[*engine.Service](di).Run(gctx)
		return nil
	})

	g.Go(func() error {
		defer cancel()
		return do.MustInvoke[*ui.Service](di).Run(gctx)
	})

	if err = g.Wait(); err != nil {
		slog.Error("Service failed", "error", err)
	}

	slog.Info("Waiting for services to finish...")
}
