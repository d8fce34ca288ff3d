package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/dayanaadylkhanova/powgate/internal/adapter/quote"
	"github.com/dayanaadylkhanova/powgate/internal/adapter/replay"
	"github.com/dayanaadylkhanova/powgate/internal/adapter/transport/tcp"
	"github.com/dayanaadylkhanova/powgate/internal/app"
	"github.com/dayanaadylkhanova/powgate/internal/service"
	"github.com/dayanaadylkhanova/powgate/pkg/config"
	"github.com/dayanaadylkhanova/powgate/pkg/logger"
)

type replayStore interface {
	service.ReplayStore
	io.Closer
}

func main() {
	cfg, err := config.Parse()
	log := logger.NewJSON(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	if err != nil {
		log.Error("bad config", slog.Any("err", err))
		os.Exit(1)
	}

	store, err := openReplayStore(cfg)
	if err != nil {
		log.Error("replay store", slog.Any("err", err))
		os.Exit(1)
	}

	var opts []service.Option
	if cfg.PoWSecret != "" {
		opts = append(opts, service.WithSecret([]byte(cfg.PoWSecret)))
	} else {
		log.Warn("POW_SECRET not set, challenges are invalidated on restart")
	}
	pow, err := service.NewSHA512(store, opts...)
	if err != nil {
		_ = store.Close()
		log.Error("pow service", slog.Any("err", err))
		os.Exit(1)
	}

	qt := quote.NewStatic()
	if cfg.QuotesFile != "" {
		if qt, err = quote.NewFromFile(cfg.QuotesFile); err != nil {
			_ = store.Close()
			log.Error("quotes", slog.Any("err", err))
			os.Exit(1)
		}
	}

	srv := tcp.NewServer(log, cfg.ListenAddr, cfg.PoWTTL, cfg.ShutdownWait, pow, qt)
	if err := app.New(srv, cfg.PoWDifficulty, store).Run(); err != nil {
		log.Error("server stopped with error", slog.Any("err", err))
		os.Exit(1)
	}
}

func openReplayStore(cfg config.Config) (replayStore, error) {
	if cfg.ReplayBackend == config.ReplayLRU {
		s, err := replay.NewLRU(cfg.ReplayCacheSize)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := replay.NewBadger(cfg.ReplayPath)
	if err != nil {
		return nil, err
	}
	return s, nil
}
