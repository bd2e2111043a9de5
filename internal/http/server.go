// Package http serves the web UI: sign-in and dashboard pages plus
// the HTMX partials they refresh themselves with.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"duitku/internal/auth"
	"duitku/internal/cache"
	"duitku/internal/core"
	"duitku/internal/ledger"
	applog "duitku/internal/log"
	appweb "duitku/web"
)

const (
	sessionCookieName   = "duitku_session"
	transactionsPerPage = 10
)

type contextKey string

const userContextKey contextKey = "user"

type Server struct {
	http.Server
	templates *template.Template

	auth   *auth.Manager
	store  ledger.Store
	ledger *ledger.Service
	hub    *ledger.Hub

	rateLimiter   *rateLimiter
	metrics       securityMetrics
	accountsCache *cache.LRUCache[core.AccountSet]
	caches        *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a
// ready-to-run http.Server.
func NewServer(addr string, authMgr *auth.Manager, store ledger.Store, svc *ledger.Service, hub *ledger.Hub) *Server {
	mux := http.NewServeMux()

	httpLogger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: applog.Middleware(httpLogger)(mux),
		},
		auth:          authMgr,
		store:         store,
		ledger:        svc,
		hub:           hub,
		rateLimiter:   newRateLimiter(),
		accountsCache: cache.NewLRUCache[core.AccountSet](500, 5*time.Minute),
		caches:        cache.NewManager(),
	}
	s.caches.Register(s.accountsCache)
	s.caches.StartCleanup(10 * time.Minute)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/", s.withSecurity(s.handleIndex))
	mux.HandleFunc("/signup", s.withSecurity(s.handleSignUp))
	mux.HandleFunc("/signin", s.withSecurity(s.handleSignIn))
	mux.HandleFunc("/signout", s.withSecurity(s.handleSignOut))

	mux.HandleFunc("/dashboard", s.withSecurity(s.withSession(s.handleDashboard)))
	mux.HandleFunc("/transactions", s.withSecurity(s.withSession(s.handleCreateTransaction)))
	mux.HandleFunc("/transactions/delete", s.withSecurity(s.withSession(s.handleDeleteTransaction)))
	mux.HandleFunc("/events", s.withSession(s.handleEvents))

	// HTMX partials
	mux.HandleFunc("/ui/transactions", s.withSecurity(s.withSession(s.handleTransactionsPartial)))
	mux.HandleFunc("/ui/overview", s.withSecurity(s.withSession(s.handleOverviewPartial)))
	mux.HandleFunc("/ui/settings", s.withSecurity(s.withSession(s.handleSettingsPartial)))
	mux.HandleFunc("/ui/profile", s.withSecurity(s.withSession(s.handleProfilePartial)))
	mux.HandleFunc("/ui/theme.css", s.withSession(s.handleThemeCSS))

	mux.HandleFunc("/settings/accounts", s.withSecurity(s.withSession(s.handleAddAccount)))
	mux.HandleFunc("/settings/accounts/delete", s.withSecurity(s.withSession(s.handleRemoveAccount)))
	mux.HandleFunc("/settings/wallets", s.withSecurity(s.withSession(s.handleAddWallet)))
	mux.HandleFunc("/settings/wallets/delete", s.withSecurity(s.withSession(s.handleDeleteWallet)))
	mux.HandleFunc("/settings/accent", s.withSecurity(s.withSession(s.handleSetAccent)))

	mux.HandleFunc("/profile", s.withSecurity(s.withSession(s.handleUpdateProfile)))
	mux.HandleFunc("/profile/password", s.withSecurity(s.withSession(s.handleChangePassword)))

	return s
}

// Shutdown stops background cleanup before closing the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		if s.hub != nil {
			// event streams only return once their channel closes
			s.hub.Close()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurity adds security headers, rate limiting on writes, and
// request logging.
func (s *Server) withSecurity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), contextKey("request_id"), requestID)
		r = r.WithContext(ctx)
		logger := applog.FromContext(ctx)

		logger.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		if detectSuspiciousRequest(r, &s.metrics) {
			logger.WarnContext(ctx, "Suspicious request",
				applog.FieldClientIP, clientIP, applog.FieldMethod, r.Method, applog.FieldPath, r.URL.String())
		}

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, &s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP, applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logger.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

// withSession resolves the session cookie into a user. Pages redirect
// to the sign-in screen; partials and API-ish routes get a 401.
func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			s.rejectUnauthenticated(w, r)
			return
		}

		user, err := s.auth.UserFromSession(r.Context(), cookie.Value)
		if err != nil {
			s.clearSessionCookie(w)
			s.rejectUnauthenticated(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) rejectUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/dashboard" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusUnauthorized)
}

func userFrom(ctx context.Context) (auth.User, bool) {
	user, ok := ctx.Value(userContextKey).(auth.User)
	return user, ok
}

// responseWriter wraps http.ResponseWriter to capture the status
// code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleIndex renders the landing page with the sign-in and sign-up
// forms, or sends signed-in visitors straight to the dashboard.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if _, err := s.auth.UserFromSession(r.Context(), cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		s.clearSessionCookie(w)
	}

	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", nil); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) accounts(ctx context.Context, userID string) (core.AccountSet, error) {
	if set, found := s.accountsCache.Get(userID); found {
		return set, nil
	}
	set, err := s.store.Accounts(ctx, userID)
	if err != nil {
		return core.AccountSet{}, err
	}
	s.accountsCache.Set(userID, set)
	return set, nil
}

func (s *Server) invalidateAccounts(userID string) {
	s.accountsCache.Delete(userID)
}
