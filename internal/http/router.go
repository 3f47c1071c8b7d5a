package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const headerRequestID = "X-Request-Id"

// Router 使用标准库 http.ServeMux, 外层加请求 ID 和访问日志
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// RegisterManagerRoutes 注册 mobile manager 路由
// /getJson.php 保留给旧的网页客户端
func (r *Router) RegisterManagerRoutes(h *ManagerHandler) {
	r.Handle("/getJson", h.GetJSON)
	r.Handle("/getJson.php", h.GetJSON)
	r.Handle("/export.xlsx", h.Export)
	r.Handle("/healthz", h.Healthz)
	r.Handle("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" && req.URL.Path != "/index.php" {
			http.NotFound(w, req)
			return
		}
		h.Index(w, req)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	id := req.Header.Get(headerRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(headerRequestID, id)

	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	r.mux.ServeHTTP(rec, req)

	r.logger.Debug("HTTP request",
		zap.String("request_id", id),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)),
	)
}
