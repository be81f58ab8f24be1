package server

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"lms/internal/domain/allocation"
	"lms/internal/domain/audit"
	"lms/internal/domain/complaint"
	"lms/internal/domain/leave"
	"lms/internal/domain/message"
	"lms/internal/domain/reimbursement"
	"lms/internal/domain/team"
	"lms/internal/domain/user"
	"lms/internal/platform/config"
	"lms/internal/platform/db"
	allocationshandler "lms/internal/transport/http/handlers/allocations"
	audithandler "lms/internal/transport/http/handlers/audit"
	authhandler "lms/internal/transport/http/handlers/auth"
	complaintshandler "lms/internal/transport/http/handlers/complaints"
	leaveshandler "lms/internal/transport/http/handlers/leaves"
	messageshandler "lms/internal/transport/http/handlers/messages"
	reimbursementshandler "lms/internal/transport/http/handlers/reimbursements"
	teamshandler "lms/internal/transport/http/handlers/teams"
	usershandler "lms/internal/transport/http/handlers/users"
	"lms/internal/transport/http/middleware"
)

func Run() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	router := NewRouter(cfg, pool)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown incomplete", "err", err)
		}
	}()

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}

// NewRouter wires stores, services and handlers onto a chi router. It is
// split from Run so tests can mount the full route tree over a fake pool.
func NewRouter(cfg config.Config, pool *pgxpool.Pool) http.Handler {
	userStore := user.NewStore(pool)
	users := user.NewService(userStore, cfg.AdminOverviewTTL)
	teams := team.NewService(team.NewStore(pool), userStore, cfg.ManagerOverviewTTL)
	allocStore := allocation.NewStore(pool)
	allocations := allocation.NewService(allocStore, userStore)
	leaves := leave.NewService(leave.NewStore(pool), allocStore, teams)
	complaints := complaint.NewService(complaint.NewStore(pool), teams)
	claims := reimbursement.NewService(reimbursement.NewStore(pool), teams)
	messages := message.NewService(message.NewStore(pool), userStore, teams, message.NewHub())
	auditSvc := audit.New(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authhandler.NewHandler(users, cfg).RegisterRoutes(r)
		usershandler.NewHandler(users, auditSvc).RegisterRoutes(r)
		teamshandler.NewHandler(teams, auditSvc).RegisterRoutes(r)
		leaveshandler.NewHandler(leaves, auditSvc).RegisterRoutes(r)
		allocationshandler.NewHandler(allocations, auditSvc).RegisterRoutes(r)
		complaintshandler.NewHandler(complaints, auditSvc).RegisterRoutes(r)
		reimbursementshandler.NewHandler(claims, auditSvc).RegisterRoutes(r)
		messageshandler.NewHandler(messages).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return router
}

// spaHandler serves the built frontend, falling back to index.html for
// client-side routes.
type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
