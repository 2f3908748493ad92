package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/BlundaBranco/SweetCookies-Manager/internal/auth"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/config"
	handler "github.com/BlundaBranco/SweetCookies-Manager/internal/handler/http"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/order"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/user"
)

type Dependencies struct {
	Orders   order.Service
	Users    user.Service
	Sessions *auth.Manager
}

func NewRouter(cfg *config.Config, deps Dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handler.NewAuthHandler(deps.Users, deps.Sessions)
	orderHandler := handler.NewOrderHandler(deps.Orders)
	reportHandler := handler.NewReportHandler(deps.Orders)

	limiter := NewRateLimiter(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst)
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		authHandler.RegisterPublicRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.Sessions.Middleware)
		authHandler.RegisterRoutes(r)
		orderHandler.RegisterRoutes(r)
		reportHandler.RegisterRoutes(r)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			event := log.Info()
			if ww.Status() >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_ip", r.RemoteAddr).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("HTTP request")
		}()

		next.ServeHTTP(ww, r)
	})
}
