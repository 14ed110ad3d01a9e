package app

import (
	"context"
	"time"

	"github.com/mrsingh-rishi/vidscribe/api"
)

const (
	sweepPeriod     = time.Minute
	shutdownTimeout = 10 * time.Second
)

// Serve runs the HTTP server until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	srv, err := api.New(api.Options{
		Runner:   a.Orchestrator,
		Sessions: a.Sessions,
		Identity: a.Identity,
		Logger:   a.Logger,
	})
	if err != nil {
		return err
	}

	go a.Sessions.RunSweeper(ctx, sweepPeriod)
	go func() {
		<-ctx.Done()
		a.Logger.Println("🛑 shutting down")
		if err := srv.ShutdownWithTimeout(shutdownTimeout); err != nil {
			a.Logger.Printf("❌ shutdown: %v", err)
		}
	}()

	a.Logger.Printf("🚀 vidscribe listening on %s", a.Config.Addr)
	return srv.Listen(a.Config.Addr)
}
