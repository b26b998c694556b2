// Package fakeapi is an in-memory stand-in for the restaurant REST API. It
// answers with the same loose envelopes as the real backend (prices as
// strings, payloads under "data") and can be told to fail any route.
package fakeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logger"
)

type Options struct {
	Secret   string
	TokenTTL time.Duration
	Logger   *zap.Logger
}

type Server struct {
	mu sync.Mutex

	router   *mux.Router
	log      *zap.Logger
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time

	nextID      int64
	products    map[int64]*product
	ingredients map[int64]*ingredient
	pivots      map[int64][]pivot
	cities      []domain.City
	users       map[int64]*account
	addresses   map[int64]*domain.Address
	orders      map[int64]*order
	resets      map[string]string
	revoked     map[string]bool

	failures map[string]int
	requests map[string][]json.RawMessage
}

func New(opts Options) *Server {
	secret := opts.Secret
	if secret == "" {
		secret = "fakeapi-secret"
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	s := &Server{
		router:      mux.NewRouter(),
		log:         logger.OrNop(opts.Logger).Named("fakeapi"),
		secret:      []byte(secret),
		tokenTTL:    ttl,
		now:         time.Now,
		nextID:      1,
		products:    make(map[int64]*product),
		ingredients: make(map[int64]*ingredient),
		pivots:      make(map[int64][]pivot),
		users:       make(map[int64]*account),
		addresses:   make(map[int64]*domain.Address),
		orders:      make(map[int64]*order),
		resets:      make(map[string]string),
		revoked:     make(map[string]bool),
		failures:    make(map[string]int),
		requests:    make(map[string][]json.RawMessage),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	r := s.router
	r.Use(s.record, s.inject)

	r.HandleFunc("/auth/login", s.login).Methods(http.MethodPost).Name("login")
	r.HandleFunc("/auth/register", s.register).Methods(http.MethodPost).Name("register")
	r.HandleFunc("/auth/me", s.authed(s.me)).Methods(http.MethodGet).Name("me")
	r.HandleFunc("/auth/logout", s.authed(s.logout)).Methods(http.MethodPost).Name("logout")
	r.HandleFunc("/auth/forgot-password", s.forgotPassword).Methods(http.MethodPost).Name("forgot_password")
	r.HandleFunc("/auth/reset-password", s.resetPassword).Methods(http.MethodPost).Name("reset_password")

	r.HandleFunc("/products", s.listProducts).Methods(http.MethodGet).Name("list_products")
	r.HandleFunc("/products", s.admin(s.createProduct)).Methods(http.MethodPost).Name("create_product")
	r.HandleFunc("/products/{id:[0-9]+}", s.admin(s.updateProduct)).Methods(http.MethodPost, http.MethodPut).Name("update_product")
	r.HandleFunc("/products/{id:[0-9]+}", s.admin(s.deleteProduct)).Methods(http.MethodDelete).Name("delete_product")
	r.HandleFunc("/products/{id:[0-9]+}/ingredients", s.productIngredients).Methods(http.MethodGet).Name("product_ingredients")
	r.HandleFunc("/products/{id:[0-9]+}/ingredients", s.admin(s.attachIngredient)).Methods(http.MethodPost).Name("attach_ingredient")
	r.HandleFunc("/products/{id:[0-9]+}/ingredients/{pivot:[0-9]+}", s.admin(s.detachIngredient)).Methods(http.MethodDelete).Name("detach_ingredient")

	r.HandleFunc("/ingredients", s.listIngredients).Methods(http.MethodGet).Name("list_ingredients")
	r.HandleFunc("/ingredients", s.admin(s.createIngredient)).Methods(http.MethodPost).Name("create_ingredient")
	r.HandleFunc("/ingredients/{id:[0-9]+}", s.admin(s.updateIngredient)).Methods(http.MethodPost, http.MethodPut).Name("update_ingredient")
	r.HandleFunc("/ingredients/{id:[0-9]+}", s.admin(s.deleteIngredient)).Methods(http.MethodDelete).Name("delete_ingredient")

	r.HandleFunc("/cities", s.listCities).Methods(http.MethodGet).Name("list_cities")

	r.HandleFunc("/addresses", s.authed(s.listAddresses)).Methods(http.MethodGet).Name("list_addresses")
	r.HandleFunc("/addresses", s.authed(s.createAddress)).Methods(http.MethodPost).Name("create_address")
	r.HandleFunc("/addresses/{id:[0-9]+}", s.authed(s.getAddress)).Methods(http.MethodGet).Name("get_address")
	r.HandleFunc("/addresses/{id:[0-9]+}", s.authed(s.updateAddress)).Methods(http.MethodPut).Name("update_address")
	r.HandleFunc("/addresses/{id:[0-9]+}", s.authed(s.deleteAddress)).Methods(http.MethodDelete).Name("delete_address")

	r.HandleFunc("/orders", s.authed(s.listOrders)).Methods(http.MethodGet).Name("list_orders")
	r.HandleFunc("/orders", s.authed(s.createOrder)).Methods(http.MethodPost).Name("create_order")
	r.HandleFunc("/orders/{id:[0-9]+}", s.authed(s.getOrder)).Methods(http.MethodGet).Name("get_order")
	r.HandleFunc("/orders/{id:[0-9]+}/status", s.admin(s.updateOrderStatus)).Methods(http.MethodPut).Name("update_order_status")
	r.HandleFunc("/orders/{id:[0-9]+}/payments", s.authed(s.createPayment)).Methods(http.MethodPost).Name("create_payment")

	r.HandleFunc("/users", s.admin(s.listUsers)).Methods(http.MethodGet).Name("list_users")
	r.HandleFunc("/users/{id:[0-9]+}", s.admin(s.updateUser)).Methods(http.MethodPut).Name("update_user_role")
	r.HandleFunc("/users/{id:[0-9]+}", s.admin(s.deleteUser)).Methods(http.MethodDelete).Name("delete_user")
}

// Fail makes every request to the named route answer status until Recover
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
}

func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// Requests JSON bodies received by the named route, oldest first
func (s *Server) Requests(route string) []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]json.RawMessage, len(s.requests[route]))
	copy(out, s.requests[route])
	return out
}

// Calls number of requests received by the named route
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests[route])
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		return route.GetName()
	}
	return ""
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := routeName(r)
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		if !json.Valid(body) {
			body = []byte("null")
		}
		s.mu.Lock()
		s.requests[name] = append(s.requests[name], json.RawMessage(body))
		s.mu.Unlock()
		s.log.Debug("request", zap.String("route", name), zap.String("method", r.Method), zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, ok := s.failures[routeName(r)]
		s.mu.Unlock()
		if ok {
			writeError(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

// IssueToken signs an HS256 token for userID
func (s *Server) IssueToken(userID int64) (string, error) {
	s.mu.Lock()
	acc, ok := s.users[userID]
	s.mu.Unlock()
	role := string(domain.RoleUser)
	if ok {
		role = string(acc.Role)
	}
	now := s.now()
	c := claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

func (s *Server) userFromRequest(r *http.Request) (*account, string, bool) {
	header := r.Header.Get("Authorization")
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenStr == "" {
		return nil, "", false
	}
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenStr, c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, "", false
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return nil, "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revoked[tokenStr] {
		return nil, "", false
	}
	acc, ok := s.users[id]
	return acc, tokenStr, ok
}

func (s *Server) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, _, ok := s.userFromRequest(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		h(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, acc)))
	}
}

func (s *Server) admin(h http.HandlerFunc) http.HandlerFunc {
	return s.authed(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).Role.IsAdmin() {
			writeError(w, http.StatusForbidden, "This action is unauthorized.")
			return
		}
		h(w, r)
	})
}

func currentUser(r *http.Request) *account {
	acc, _ := r.Context().Value(ctxKey{}).(*account)
	return acc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func data(v any) map[string]any { return map[string]any{"data": v} }

func pathID(r *http.Request, key string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[key], 10, 64)
	return id
}

func decodeBody(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

// money renders a decimal the way the backend does: a quoted fixed-point string
func money(d decimal.Decimal) string { return d.StringFixed(2) }

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// caller holds s.mu
func (s *Server) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}
