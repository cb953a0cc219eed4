// Package http serves the JSON API over the portfolio: houses, rooms,
// tenants, payments, and the derived status and stats views.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"domus/internal/cache"
	"domus/internal/core"
	"domus/internal/events"
	applog "domus/internal/log"
	"domus/internal/services"
	"domus/internal/storage"
)

// Store is the read surface the handlers need. *storage.SQLiteRepository
// satisfies it.
type Store interface {
	services.Store
	GetRoom(ctx context.Context, id int64) (core.Room, error)
	ListRooms(ctx context.Context) ([]core.Room, error)
	GetPayment(ctx context.Context, id int64) (core.Payment, error)
	ListPayments(ctx context.Context) ([]core.Payment, error)
	PaymentsByTenantMonth(ctx context.Context, tenantID int64, month core.Month) ([]core.Payment, error)
}

// TenancyWriter is the mutation surface for houses, rooms and tenants.
type TenancyWriter interface {
	CreateHouse(ctx context.Context, h core.House) (int64, error)
	UpdateHouse(ctx context.Context, id int64, u storage.HouseUpdate) error
	DeleteHouse(ctx context.Context, id int64) error
	CreateRoom(ctx context.Context, r core.Room) (int64, error)
	UpdateRoom(ctx context.Context, id int64, u storage.RoomUpdate) error
	DeleteRoom(ctx context.Context, id int64) error
	CreateTenant(ctx context.Context, t core.Tenant) (int64, error)
	CreateTenantWithRoom(ctx context.Context, room core.Room, t core.Tenant) (roomID, tenantID int64, err error)
	UpdateTenant(ctx context.Context, id int64, u storage.TenantUpdate) error
	DeleteTenant(ctx context.Context, id int64) error
}

// PaymentWriter is the mutation surface for payments.
type PaymentWriter interface {
	RecordPayment(ctx context.Context, p core.Payment) (int64, error)
	UpdatePayment(ctx context.Context, id int64, u storage.PaymentUpdate) error
	DeletePayment(ctx context.Context, id int64) error
}

type Server struct {
	http.Server
	store     Store
	tenancy   TenancyWriter
	payments  PaymentWriter
	status    *services.StatusService
	portfolio *services.PortfolioService
	bus       *events.Bus

	rateLimiter *rateLimiter
	metrics     *securityMetrics
	logs        *applog.StructuredLogger

	// Derived figures are cached until the next data change.
	statsCache      *cache.LRUCache[core.PortfolioStats]
	houseStatsCache *cache.LRUCache[[]core.HouseStats]
	cacheManager    *cache.Manager

	cancelInvalidate func()
	shutdownOnce     sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, store Store, tenancy TenancyWriter, payments PaymentWriter,
	status *services.StatusService, portfolio *services.PortfolioService, bus *events.Bus) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:           store,
		tenancy:         tenancy,
		payments:        payments,
		status:          status,
		portfolio:       portfolio,
		bus:             bus,
		rateLimiter:     newRateLimiter(),
		metrics:         &securityMetrics{},
		logs:            applog.NewStructuredLogger(applog.New(applog.Config{Component: applog.ComponentHTTP})),
		statsCache:      cache.NewLRUCache[core.PortfolioStats](4, 5*time.Minute),
		houseStatsCache: cache.NewLRUCache[[]core.HouseStats](4, 5*time.Minute),
		cacheManager:    cache.NewManager(),
	}

	s.cacheManager.Register(s.statsCache)
	s.cacheManager.Register(s.houseStatsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	if bus != nil {
		changes, cancel := bus.Subscribe()
		s.cancelInvalidate = cancel
		go s.invalidateOnChange(changes)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/v1/houses", s.guard(s.handleListHouses))
	mux.HandleFunc("POST /api/v1/houses", s.guard(s.handleCreateHouse))
	mux.HandleFunc("GET /api/v1/houses/{id}", s.guard(s.handleGetHouse))
	mux.HandleFunc("PATCH /api/v1/houses/{id}", s.guard(s.handleUpdateHouse))
	mux.HandleFunc("DELETE /api/v1/houses/{id}", s.guard(s.handleDeleteHouse))
	mux.HandleFunc("GET /api/v1/houses/{id}/rooms", s.guard(s.handleHouseRooms))
	mux.HandleFunc("GET /api/v1/houses/{id}/tenants", s.guard(s.handleHouseTenants))
	mux.HandleFunc("GET /api/v1/houses/{id}/stats", s.guard(s.handleHouseStats))

	mux.HandleFunc("GET /api/v1/rooms", s.guard(s.handleListRooms))
	mux.HandleFunc("POST /api/v1/rooms", s.guard(s.handleCreateRoom))
	mux.HandleFunc("GET /api/v1/rooms/{id}", s.guard(s.handleGetRoom))
	mux.HandleFunc("PATCH /api/v1/rooms/{id}", s.guard(s.handleUpdateRoom))
	mux.HandleFunc("DELETE /api/v1/rooms/{id}", s.guard(s.handleDeleteRoom))

	mux.HandleFunc("GET /api/v1/tenants", s.guard(s.handleListTenants))
	mux.HandleFunc("POST /api/v1/tenants", s.guard(s.handleCreateTenant))
	mux.HandleFunc("GET /api/v1/tenants/{id}", s.guard(s.handleGetTenant))
	mux.HandleFunc("PATCH /api/v1/tenants/{id}", s.guard(s.handleUpdateTenant))
	mux.HandleFunc("DELETE /api/v1/tenants/{id}", s.guard(s.handleDeleteTenant))
	mux.HandleFunc("GET /api/v1/tenants/{id}/payments", s.guard(s.handleTenantPayments))
	mux.HandleFunc("GET /api/v1/tenants/{id}/status", s.guard(s.handleTenantStatus))

	mux.HandleFunc("GET /api/v1/payments", s.guard(s.handleListPayments))
	mux.HandleFunc("POST /api/v1/payments", s.guard(s.handleCreatePayment))
	mux.HandleFunc("GET /api/v1/payments/{id}", s.guard(s.handleGetPayment))
	mux.HandleFunc("PATCH /api/v1/payments/{id}", s.guard(s.handleUpdatePayment))
	mux.HandleFunc("DELETE /api/v1/payments/{id}", s.guard(s.handleDeletePayment))

	mux.HandleFunc("GET /api/v1/dashboard", s.guard(s.handleDashboard))
	mux.HandleFunc("GET /api/v1/stats", s.guard(s.handlePortfolioStats))
	mux.HandleFunc("GET /api/v1/stats/houses", s.guard(s.handleAllHouseStats))
	mux.HandleFunc("GET /api/v1/overdue", s.guard(s.handleOverdue))
	mux.HandleFunc("GET /api/v1/changes", s.guard(s.handleChanges))

	return s
}

// invalidateOnChange drops the derived caches whenever any entity changes.
func (s *Server) invalidateOnChange(changes <-chan events.Change) {
	for change := range changes {
		s.statsCache.Purge()
		s.houseStatsCache.Purge()
		slog.Debug("Stats caches invalidated",
			"entity", string(change.Entity), "op", string(change.Op), "version", change.Version)
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cancelInvalidate != nil {
			s.cancelInvalidate()
		}
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// guard adds security headers, rate limiting, and request logging.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		s.logs.LogHTTPStart(ctx, r, clientIP)

		// Mutations are rate limited per client.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldComponent, applog.ComponentRateLimit)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logs.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
