package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/dayanaadylkhanova/powgate/pkg/puzzle"
)

// App runs the puzzle server until SIGINT/SIGTERM and then releases the
// resources it was given, such as the replay store.
type App struct {
	srv        Runner
	difficulty uint16
	closers    []io.Closer
}

func New(srv Runner, difficulty uint16, closers ...io.Closer) *App {
	return &App{srv: srv, difficulty: difficulty, closers: closers}
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

func (a *App) RunContext(ctx context.Context) error {
	if a.difficulty < 1 {
		return errors.Join(puzzle.ErrZeroDifficulty, a.close())
	}
	err := a.srv.Run(ctx, a.difficulty)
	return errors.Join(err, a.close())
}

func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close: %w", err))
		}
	}
	return errors.Join(errs...)
}
