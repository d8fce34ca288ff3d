package app

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/dayanaadylkhanova/powgate/pkg/puzzle"
	"go.uber.org/mock/gomock"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestAppRun_DelegatesAndPassesDifficulty_GoMock(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mr := NewMockRunner(ctrl)

	var gotCtx context.Context

	mr.EXPECT().
		Run(gomock.Any(), uint16(5)).
		DoAndReturn(func(ctx context.Context, difficulty uint16) error {
			gotCtx = ctx
			select {
			case <-ctx.Done():
				t.Fatalf("ctx was canceled prematurely")
			default:
			}
			return nil
		})

	if err := New(mr, 5).RunContext(context.Background()); err != nil {
		t.Fatalf("RunContext() unexpected error: %v", err)
	}
	if gotCtx == nil {
		t.Fatalf("Runner.Run received nil ctx")
	}
}

func TestAppRun_PropagatesError_GoMock(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	wantErr := errors.New("boom")
	mr := NewMockRunner(ctrl)

	mr.EXPECT().Run(gomock.Any(), uint16(7)).Return(wantErr)

	err := New(mr, 7).RunContext(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("RunContext() error = %v; want %v", err, wantErr)
	}
}

func TestAppRun_ZeroDifficultyRejectedBeforeServing(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mr := NewMockRunner(ctrl) // Run must not be called

	closed := false
	a := New(mr, 0, closerFunc(func() error { closed = true; return nil }))

	if err := a.RunContext(context.Background()); !errors.Is(err, puzzle.ErrZeroDifficulty) {
		t.Fatalf("RunContext() error = %v; want ErrZeroDifficulty", err)
	}
	if !closed {
		t.Fatal("closers must run even when startup is rejected")
	}
}

func TestAppRun_ClosesInReverseOrder(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mr := NewMockRunner(ctrl)
	mr.EXPECT().Run(gomock.Any(), uint16(1)).Return(nil)

	var order []string
	closeErr := errors.New("close failed")
	a := New(mr, 1,
		closerFunc(func() error { order = append(order, "store"); return nil }),
		closerFunc(func() error { order = append(order, "quotes"); return closeErr }),
	)

	err := a.RunContext(context.Background())
	if !errors.Is(err, closeErr) {
		t.Fatalf("RunContext() error = %v; want %v", err, closeErr)
	}
	if len(order) != 2 || order[0] != "quotes" || order[1] != "store" {
		t.Fatalf("close order = %v; want [quotes store]", order)
	}
}

func TestAppRun_CancelsOnSignal_GracefulExit_GoMock(t *testing.T) {
	ctrl := gomock.NewController(t)
	mr := NewMockRunner(ctrl)

	mr.EXPECT().
		Run(gomock.Any(), uint16(1)).
		DoAndReturn(func(ctx context.Context, difficulty uint16) error {
			<-ctx.Done()
			return nil
		})

	a := New(mr, 1)

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	time.Sleep(50 * time.Millisecond)

	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("sending SIGINT failed: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() returned error on graceful cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after SIGINT")
	}
}
