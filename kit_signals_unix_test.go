//go:build unix

package fxkit

import (
	"context"
	"log/slog"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/evan-idocoding/fxkit/effect"
)

func TestKit_ShutdownOnSignal(t *testing.T) {
	k := NewDefaultKit(KitSpec{
		Logger:  slog.New(slog.DiscardHandler),
		Signals: SignalSpec{Signals: []os.Signal{syscall.SIGUSR1}},
	})
	stop := k.ShutdownOnSignal()
	defer stop()

	reg, _ := k.Scope("page")
	cfg := effect.PulseSubtle()
	cfg.PulseCount = effect.Forever
	tk, err := reg.Start(context.Background(), "pulse", k.Surface.Node("n"), cfg)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("kill: %v", err)
	}
	select {
	case <-tk.Done():
	case <-time.After(3 * time.Second):
		t.Fatalf("effect still running after shutdown signal")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := k.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if owners := k.Coordinator.Owners(); len(owners) != 0 {
		t.Fatalf("owners after shutdown = %v", owners)
	}
}
