// Package usersvc implements the demo users API that the contract test
// harness exercises. It is a deliberately small service: user registration
// and lookup, a password login that issues JWT bearer tokens, and a single
// protected endpoint accepting either bearer or basic credentials.
package usersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/usersdemo/api-contract-tests/servicedef"
)

const (
	serviceDescription = "users-api demo service"
	shutdownTimeout    = 5 * time.Second
)

// Server is the demo users API: registration, lookup, a password login that
// issues bearer tokens, and one endpoint protected by bearer-or-basic auth.
type Server struct {
	cfg      Config
	store    *Store
	tokens   *TokenIssuer
	logger   *slog.Logger
	validate *validator.Validate
	handler  http.Handler
}

// NewServer wires the router. The caller owns the store.
func NewServer(cfg Config, store *Store, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		tokens:   NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		logger:   logger,
		validate: validator.New(),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.logRequests)
	r.Use(chimiddleware.Recoverer)

	r.Get("/status", s.handleStatus)
	r.Post("/users", s.handleCreateUser)
	r.Get("/users/{email}", s.handleGetUser)
	r.Post("/login", s.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/protected", s.handleProtected)
	})

	s.handler = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	server := &http.Server{Handler: s.handler}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, servicedef.StatusRep{
		Description: serviceDescription,
		Capabilities: []string{
			servicedef.CapabilityBasicAuth,
			servicedef.CapabilityBearerAuth,
		},
	})
}

type createUserRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondJSON(w, http.StatusUnprocessableEntity, servicedef.ErrorRep{Error: "invalid request body"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondJSON(w, http.StatusUnprocessableEntity, servicedef.ErrorRep{Error: "validation failed: " + err.Error()})
		return
	}

	user, err := s.store.Create(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrEmailExists) {
		s.respondJSON(w, http.StatusConflict, servicedef.ErrorRep{Error: "email already registered"})
		return
	}
	if err != nil {
		s.logger.Error("create user failed", "error", err)
		s.respondJSON(w, http.StatusInternalServerError, servicedef.ErrorRep{Error: "internal error"})
		return
	}
	s.respondJSON(w, http.StatusCreated, servicedef.UserRep{ID: user.ID, Email: user.Email})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	user, err := s.store.GetByEmail(r.Context(), email)
	if errors.Is(err, ErrUserNotFound) {
		s.respondJSON(w, http.StatusNotFound, servicedef.ErrorRep{Error: "user not found"})
		return
	}
	if err != nil {
		s.logger.Error("get user failed", "error", err)
		s.respondJSON(w, http.StatusInternalServerError, servicedef.ErrorRep{Error: "internal error"})
		return
	}
	s.respondJSON(w, http.StatusOK, servicedef.UserRep{ID: user.ID, Email: user.Email})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondJSON(w, http.StatusUnprocessableEntity, servicedef.ErrorRep{Error: "invalid form body"})
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := s.store.Authenticate(r.Context(), username, password)
	if errors.Is(err, ErrInvalidCredentials) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		s.respondJSON(w, http.StatusUnauthorized, servicedef.ErrorRep{Error: "incorrect username or password"})
		return
	}
	if err != nil {
		s.logger.Error("login failed", "error", err)
		s.respondJSON(w, http.StatusInternalServerError, servicedef.ErrorRep{Error: "internal error"})
		return
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		s.logger.Error("issue token failed", "error", err)
		s.respondJSON(w, http.StatusInternalServerError, servicedef.ErrorRep{Error: "internal error"})
		return
	}
	s.respondJSON(w, http.StatusOK, servicedef.TokenRep{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleProtected(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, servicedef.GreetingRep{Hello: userEmail(r)})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).Round(time.Microsecond).String(),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}
