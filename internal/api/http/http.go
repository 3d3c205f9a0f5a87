package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/borncamp/adboard-manager/internal/apisrv/auth"
	"github.com/borncamp/adboard-manager/internal/apisrv/dashboard"
)

// Config is the configuration for the http server
type Config struct {
	Port           string   `mapstructure:"port"`
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Server is the http server
type Server struct {
	hs   *http.Server
	c    *Config
	done chan struct{}
}

// New creates a new server
func New(config *Config) *Server {
	return &Server{
		c:    config,
		done: make(chan struct{}),
	}
}

// Done returns a channel that is closed when the http server exits
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) setupRouter(authServer *auth.Server, ds *dashboard.Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.c.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodOptions,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Authorization", "X-Api-Key"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", authServer.HandleLogin)
		r.Post("/create", authServer.HandleCreate)
		r.Post("/delete", authServer.HandleDelete)
		r.Post("/change-password", authServer.HandleChangePassword)
	})

	r.Route("/api/sync", func(r chi.Router) {
		// sync jobs authenticate with an api key, not a user token
		r.Group(func(r chi.Router) {
			r.Use(ds.WithAPIKey)
			r.Post("/orders", ds.PushOrders)
			r.Post("/ad-metrics", ds.PushAdMetrics)
			r.Post("/shopify-metrics", ds.PushShopifyMetrics)
		})
		r.With(authServer.WithAuth).Get("/status", ds.LastSync)
	})

	r.Group(func(r chi.Router) {
		r.Use(authServer.WithAuth)

		r.Route("/api/shipping", func(r chi.Router) {
			r.Get("/profiles", ds.ListProfiles)
			r.Post("/profiles", ds.AddProfile)
			r.Post("/profiles/test", ds.TestProfile)
			r.Get("/profiles/{id}", ds.GetProfile)
			r.Put("/profiles/{id}", ds.UpdateProfile)
			r.Delete("/profiles/{id}", ds.DeleteProfile)
			r.Post("/calculate", ds.Calculate)
			r.Post("/calculate/all", ds.CalculateAll)
			r.Get("/rules/usage", ds.RuleUsage)
		})

		r.Route("/api/orders", func(r chi.Router) {
			r.Get("/", ds.ListOrders)
			r.Get("/{id}", ds.GetOrder)
		})

		r.Route("/api/campaigns", func(r chi.Router) {
			r.Get("/", ds.ListCampaigns)
			r.Get("/timeseries", ds.AllCampaignsTimeSeries)
			r.Get("/{id}/timeseries", ds.CampaignTimeSeries)
		})

		r.Route("/api/metrics", func(r chi.Router) {
			r.Get("/monthly", ds.MonthlySummaries)
			r.Get("/month", ds.MonthSummary)
		})

		r.Route("/api/projection", func(r chi.Router) {
			r.Post("/sessions", ds.CreateProjection)
			r.Get("/sessions/{id}", ds.GetProjection)
			r.Post("/sessions/{id}/base-month", ds.SetProjectionBaseMonth)
			r.Post("/sessions/{id}/multiplier", ds.SetProjectionMultiplier)
			r.Delete("/sessions/{id}", ds.DeleteProjection)
		})
	})

	return r
}

// Start starts the server
func (s *Server) Start(ctx context.Context, authServer *auth.Server, ds *dashboard.Server) error {
	ctx, cancel := context.WithCancel(ctx)
	hsDone := make(chan struct{})

	go func() {
		<-hsDone
		close(s.done)
	}()

	listenerAddr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	s.hs = &http.Server{
		Addr:    listenerAddr,
		Handler: s.setupRouter(authServer, ds),
	}

	go func() {
		slog.Default().InfoContext(ctx, fmt.Sprintf("adboard-manager new listener on: http://%v", listenerAddr))
		err := s.hs.ListenAndServe()
		if err == http.ErrServerClosed {
			slog.Default().InfoContext(ctx, "http server returned")
		} else {
			slog.Default().ErrorContext(ctx, "http server exited with an error",
				slog.String("err", err.Error()),
			)
		}
		cancel()
		close(hsDone)
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.hs == nil {
		return nil
	}
	return s.hs.Shutdown(ctx)
}
