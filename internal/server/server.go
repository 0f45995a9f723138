package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/xela07ax/trustlens-engine/internal/domain"
	"github.com/xela07ax/trustlens-engine/internal/infra"
	"github.com/xela07ax/trustlens-engine/internal/infra/auth"
	"go.uber.org/zap"
)

// Engine — то, что серверу нужно от ядра. Интерфейс узкий, чтобы
// хендлеры тестировались без сборки всего оркестратора.
type Engine interface {
	AnalyzeAll(ctx context.Context, req domain.OrchestrationRequest) (*domain.OrchestrationResult, error)
}

type Server struct {
	router *chi.Mux
	logger *zap.Logger
	engine Engine

	// nil = API открыт (dev-режим без сконфигурированного ключа)
	authValidator auth.TokenValidator
}

func New(engine Engine, authValidator auth.TokenValidator, logger *zap.Logger) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		logger:        logger.Named("api"),
		engine:        engine,
		authValidator: authValidator,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TracingMiddleware)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ ---
	r.Group(func(r chi.Router) {
		// Healthcheck для мониторинга
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	// --- 3. Основной API (под токеном, если ключ сконфигурирован) ---
	r.Group(func(r chi.Router) {
		if s.authValidator != nil {
			r.Use(auth.NewMiddleware(s.authValidator, s.logger))
		}
		r.Post("/v1/analyze", s.handleAnalyze)
	})
}

// TracingMiddleware инициализирует Trace-ID для каждого запроса
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Пытаемся достать ID из заголовка (если пришел от прокси)
		traceID := r.Header.Get("X-Trace-ID")

		// 2. Если его нет — берем RequestID от chi
		if traceID == "" {
			traceID = middleware.GetReqID(r.Context())
		}

		// 3. Кладем в контекст и дублируем в ответ
		ctx := infra.WithTraceID(r.Context(), traceID)
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
