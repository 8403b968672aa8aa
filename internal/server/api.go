package server

import (
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"github.com/packagewjx/traffic-classifier/internal/classify"
	"github.com/packagewjx/traffic-classifier/pkg/core"
	api "github.com/packagewjx/traffic-classifier/pkg/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"io"
	"net/http"
	"time"
)

func (s *serverImpl) buildHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		s.requestIDMiddleware,
		s.recoveryMiddleware,
		s.metricsMiddleware,
		s.loggingMiddleware,
	)

	r.Get(api.PathHealth, s.handleHealth)
	r.Post(api.PathClassify, s.handleClassify)
	r.Method(http.MethodGet, api.PathMetrics, promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (s *serverImpl) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &core.HealthStatus{Status: core.HealthyStatus})
}

func (s *serverImpl) handleClassify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		s.rejectClassify(w, r, &classify.Error{Kind: classify.ErrMalformedRequest, Message: "读取请求体失败：" + err.Error()})
		return
	}

	result := s.engine.Classify(body)
	if result.Err != nil {
		s.rejectClassify(w, r, result.Err)
		return
	}

	prediction := result.Prediction
	response := &core.Classification{
		Application:     prediction.Application,
		Confidence:      prediction.Confidence,
		Priority:        prediction.Priority,
		InferenceTimeMs: float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond),
	}
	s.metrics.classificationsTotal.WithLabelValues(prediction.Application, string(prediction.Priority)).Inc()
	writeJSON(w, http.StatusOK, response)
}

// 分类失败一律作为客户端错误返回，包括推理过程中的错误
func (s *serverImpl) rejectClassify(w http.ResponseWriter, r *http.Request, err *classify.Error) {
	s.metrics.classifyErrorsTotal.WithLabelValues(string(err.Kind)).Inc()
	s.logger.Info("分类请求失败",
		zap.String("requestID", requestIDFrom(r.Context())),
		zap.String("kind", string(err.Kind)),
		zap.String("error", err.Message))
	writeError(w, http.StatusBadRequest, err.Message)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, &core.ErrorResponse{Error: message})
}
