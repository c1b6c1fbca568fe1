package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-optimizer/internal/config"
	"github.com/jonathan/resume-optimizer/internal/db"
	"github.com/jonathan/resume-optimizer/internal/generation"
	"github.com/jonathan/resume-optimizer/internal/jd"
	"github.com/jonathan/resume-optimizer/internal/lengthfit"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/matching"
	"github.com/jonathan/resume-optimizer/internal/scoring"
	"github.com/jonathan/resume-optimizer/internal/server/ratelimit"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Store is the persistence surface the handlers need. *db.DB implements it;
// tests substitute stubs.
type Store interface {
	matching.BulletStore
	SaveBullet(ctx context.Context, userID, text string, embedding []float32) (uuid.UUID, error)
	GetBullet(ctx context.Context, bulletID uuid.UUID) (*types.Bullet, error)
	SaveFactRecord(ctx context.Context, bulletID uuid.UUID, facts *types.FactSet) (uuid.UUID, error)
	ConfirmFactRecord(ctx context.Context, recordID uuid.UUID) error
	GetConfirmedFacts(ctx context.Context, bulletID uuid.UUID) (*types.FactSet, error)
	ListFactRecords(ctx context.Context, bulletID uuid.UUID) ([]types.FactRecord, error)
	CreateQASession(ctx context.Context, bulletID uuid.UUID) (uuid.UUID, error)
	AddQAPair(ctx context.Context, sessionID uuid.UUID, question, answer string) error
	CompleteQASession(ctx context.Context, sessionID uuid.UUID) error
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	client      llm.Client
	scorer      *scoring.Scorer
	matcher     *matching.Matcher
	generator   *generation.Generator
	fitter      *lengthfit.Fitter
	rateLimiter *ratelimit.Limiter
	database    *db.DB
}

// New creates a new server instance from the merged configuration. The
// database and the LLM provider are both optional: endpoints that need a
// missing one fail loudly per request instead of blocking startup.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var client llm.Client
	if cfg.APIKey != "" {
		c, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create llm client: %w", err)
		}
		client = c
	}

	var database *db.DB
	if cfg.DatabaseURL != "" {
		d, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		database = d
	}

	distiller := jd.NewDistiller(client, nil, nil)
	fitter := lengthfit.NewFitter(client, cfg.RepromptTries)

	var store Store
	if database != nil {
		store = database
	}

	s := &Server{
		store:       store,
		client:      client,
		scorer:      scoring.NewScorer(client, distiller, cfg.ScoringWeights()),
		matcher:     matching.NewMatcher(store, client),
		generator:   generation.NewGenerator(client, distiller, fitter),
		fitter:      fitter,
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
		database:    database,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /score", s.handleScore)
	mux.HandleFunc("POST /match", s.handleMatch)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("POST /generate/batch", s.handleGenerateBatch)
	mux.HandleFunc("POST /fit", s.handleFit)
	mux.HandleFunc("POST /bullets", s.handleSaveBullet)
	mux.HandleFunc("POST /bullets/{id}/facts", s.handleExtractFacts)
	mux.HandleFunc("GET /bullets/{id}/facts", s.handleListFacts)
	mux.HandleFunc("POST /facts/{id}/confirm", s.handleConfirmFacts)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls can chain several LLM requests
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests and blocks until shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.database != nil {
		s.database.Close()
	}
	if s.client != nil {
		_ = s.client.Close()
	}
	log.Println("Server stopped")
	return nil
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		}
		if !info.Allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())+1))
			}
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// clientID extracts the client identifier (IP) from the request
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
