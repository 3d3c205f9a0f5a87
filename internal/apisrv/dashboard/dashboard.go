package dashboard

import (
	"crypto/subtle"
	"net/http"

	"github.com/borncamp/adboard-manager/internal/aggregate"
	"github.com/borncamp/adboard-manager/internal/dependency"
	"github.com/borncamp/adboard-manager/internal/projection"
	"github.com/borncamp/adboard-manager/internal/shipping"
)

// Config contains the configuration for the dashboard server.
type Config struct {
	// SyncAPIKey authenticates the external sync jobs pushing orders and
	// daily metrics. Separate from admin JWT auth on purpose.
	SyncAPIKey string `mapstructure:"syncApiKey"`
}

// Server implements the dashboard API on top of the domain services.
type Server struct {
	repo     dependency.Repository
	shipping *shipping.Service
	agg      *aggregate.Service
	proj     *projection.Engine
	c        *Config
}

// New creates a new dashboard server.
func New(c *Config, repo dependency.Repository, sh *shipping.Service, agg *aggregate.Service, proj *projection.Engine) *Server {
	return &Server{
		repo:     repo,
		shipping: sh,
		agg:      agg,
		proj:     proj,
		c:        c,
	}
}

// WithAPIKey middleware authenticates sync push requests via X-Api-Key.
func (s *Server) WithAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Api-Key")
		if s.c.SyncAPIKey == "" ||
			subtle.ConstantTimeCompare([]byte(key), []byte(s.c.SyncAPIKey)) != 1 {
			http.Error(w, "invalid api key", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
