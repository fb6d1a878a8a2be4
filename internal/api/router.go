// Package api exposes the extraction pipeline over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sells-group/intake-cli/internal/model"
)

// Extractor is the pipeline surface the API needs.
type Extractor interface {
	RunDetailed(in model.Input) *model.Trace
	RunBatch(ctx context.Context, inputs []model.Input, concurrency int) ([]*model.Trace, error)
}

// Options configures the router.
type Options struct {
	RateLimitRPS     float64
	RateLimitBurst   int
	CORSOrigins      []string
	MaxBodyBytes     int64
	BatchConcurrency int
	MaxBatchSize     int
	RequestTimeout   time.Duration
}

// Defaults applied by NewRouter to zero-valued options.
const (
	DefaultMaxBodyBytes   = 1 << 20
	DefaultMaxBatchSize   = 100
	DefaultRequestTimeout = 30 * time.Second
)

type server struct {
	ext  Extractor
	opts Options
}

// NewRouter builds the HTTP handler:
//
//	GET  /health
//	POST /v1/extract
//	POST /v1/extract/batch
func NewRouter(ext Extractor, opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultMaxBatchSize
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = 1
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &server{ext: ext, opts: opts}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Route("/v1", func(r chi.Router) {
		if opts.RateLimitRPS > 0 {
			burst := opts.RateLimitBurst
			if burst < 1 {
				burst = 1
			}
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)))
		}
		r.Use(middleware.Timeout(opts.RequestTimeout))
		r.Post("/extract", s.extract)
		r.Post("/extract/batch", s.extractBatch)
	})

	return r
}
