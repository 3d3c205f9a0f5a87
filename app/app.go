package app

import (
	"context"
	"log/slog"

	"github.com/borncamp/adboard-manager/config"
	"github.com/borncamp/adboard-manager/internal/aggregate"
	httpapi "github.com/borncamp/adboard-manager/internal/api/http"
	"github.com/borncamp/adboard-manager/internal/apisrv/auth"
	"github.com/borncamp/adboard-manager/internal/apisrv/dashboard"
	"github.com/borncamp/adboard-manager/internal/dependency"
	"github.com/borncamp/adboard-manager/internal/projection"
	"github.com/borncamp/adboard-manager/internal/shipping"
	"github.com/borncamp/adboard-manager/internal/store"
)

// App is the main application
type App struct {
	hs   *httpapi.Server
	db   dependency.Repository
	c    *config.Config
	done chan struct{}
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	var err error
	slog.Default().InfoContext(ctx, "starting adboard manager")

	a.db, err = store.New(ctx, a.c.DB)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't connect to mysql",
			slog.String("err", err.Error()),
		)
		return err
	}

	authS, err := auth.New(&a.c.Auth, a.db.Admin())
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed create new auth server",
			slog.String("err", err.Error()),
		)
		return err
	}

	shippingS, err := shipping.New(a.db, &a.c.Shipping)
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed create shipping service",
			slog.String("err", err.Error()),
		)
		return err
	}
	aggS := aggregate.New(a.db, &a.c.Aggregate)
	projE := projection.New(aggS, a.db.Now, &a.c.Projection)

	dashboardS := dashboard.New(&a.c.Dashboard, a.db, shippingS, aggS, projE)

	// start API server
	a.hs = httpapi.New(&a.c.HTTP)
	if err = a.hs.Start(ctx, authS, dashboardS); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server",
			slog.String("err", err.Error()),
		)
		return err
	}

	go func() {
		<-a.hs.Done()
		close(a.done)
	}()

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	_ = a.hs.Stop(ctx)
	a.db.Close()
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() chan struct{} {
	return a.done
}
