package server

import (
	"encoding/json"
	"github.com/packagewjx/traffic-classifier/internal/artifact"
	"github.com/packagewjx/traffic-classifier/internal/classify"
	"github.com/packagewjx/traffic-classifier/internal/model"
	"github.com/packagewjx/traffic-classifier/pkg/core"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *serverImpl {
	classifier, err := model.ParseClassifier([]byte(`{
	  "type": "random_forest", "n_features": 2, "n_classes": 3,
	  "trees": [
	    {"nodes": [
	      {"feature": 0, "threshold": 0, "left": 1, "right": 2},
	      {"feature": -1, "left": -1, "right": -1, "value": [6, 2, 2]},
	      {"feature": -1, "left": -1, "right": -1, "value": [0, 1, 9]}
	    ]},
	    {"nodes": [{"feature": -1, "left": -1, "right": -1, "value": [1, 1, 2]}]}
	  ]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	scaler, err := model.ParseScaler([]byte(`{"type": "minmax", "min": [-1, 0], "scale": [0.01, 0.001], "feature_names": ["pkt_rate", "byte_rate"]}`))
	if err != nil {
		t.Fatal(err)
	}
	bundle, err := artifact.NewBundle(nil, scaler, classifier,
		model.NewLabelEncoder([]string{"VoIP", "Email", "Video_Streaming"}))
	if err != nil {
		t.Fatal(err)
	}

	config := &ServerConfig{MaxBodyBytes: 256}
	return newServer(config, classify.NewEngine(bundle, zap.NewNop()), zap.NewNop())
}

func do(s *serverImpl, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rr := do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get(HeaderRequestID))
}

func TestClassify(t *testing.T) {
	s := newTestServer(t)

	// pkt_rate=50 标准化后为-0.5，两棵树平均后VoIP的概率为0.425
	rr := do(s, http.MethodPost, "/classify", `{"pkt_rate": 50, "byte_rate": 10, "ignored": "x"}`)
	if !assert.Equal(t, http.StatusOK, rr.Code) {
		assert.FailNow(t, rr.Body.String())
	}
	result := &core.Classification{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), result))
	assert.Equal(t, "VoIP", result.Application)
	assert.InDelta(t, 0.425, result.Confidence, 1e-9)
	assert.Equal(t, core.PriorityHigh, result.Priority)
	assert.True(t, result.InferenceTimeMs >= 0)

	raw := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	for _, key := range []string{"application", "confidence", "priority", "inference_time_ms"} {
		assert.Contains(t, raw, key)
	}

	rr = do(s, http.MethodPost, "/classify", `{"pkt_rate": 500}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), result))
	assert.Equal(t, "Video_Streaming", result.Application)
	assert.Equal(t, core.PriorityLow, result.Priority)
}

func TestClassifyEmptyObject(t *testing.T) {
	s := newTestServer(t)
	rr := do(s, http.MethodPost, "/classify", `{}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	result := &core.Classification{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), result))
	assert.True(t, result.Confidence >= 0 && result.Confidence <= 1)
	assert.True(t, result.Priority.Valid())
}

func TestClassifyDeterministic(t *testing.T) {
	s := newTestServer(t)
	body := `{"pkt_rate": 120.5, "byte_rate": 42}`

	first := &core.Classification{}
	assert.NoError(t, json.Unmarshal(do(s, http.MethodPost, "/classify", body).Body.Bytes(), first))
	for i := 0; i < 5; i++ {
		next := &core.Classification{}
		assert.NoError(t, json.Unmarshal(do(s, http.MethodPost, "/classify", body).Body.Bytes(), next))
		assert.Equal(t, first.Application, next.Application)
		assert.Equal(t, first.Confidence, next.Confidence)
		assert.Equal(t, first.Priority, next.Priority)
	}
}

func TestClassifyMalformed(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{
		"",
		"not json",
		"[1, 2, 3]",
		"null",
		`{"pkt_rate": "fast"}`,
		`{"pkt_rate": 1, "byte_rate": ` + strings.Repeat("1", 300) + `}`,
	} {
		rr := do(s, http.MethodPost, "/classify", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		errResp := &core.ErrorResponse{}
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), errResp), body)
		assert.NotEmpty(t, errResp.Error, body)

		// 出错后服务仍然可用
		rr = do(s, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, rr.Body.String())
	}
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)

	rr := do(s, http.MethodGet, "/classify", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = do(s, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = do(s, http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rr.Body.String())
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)
	const id = "6f1c1a56-2b1c-4d0a-9c1e-0d8e5c3f7a11"

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, id)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, id, rr.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid")
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.NotEqual(t, "not-a-uuid", rr.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, rr.Header().Get(HeaderRequestID))
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t)
	do(s, http.MethodPost, "/classify", `{"pkt_rate": 500}`)
	do(s, http.MethodPost, "/classify", `oops`)

	rr := do(s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `traffic_classifier_classifications_total{application="Video_Streaming",priority="LOW"} 1`)
	assert.Contains(t, body, `traffic_classifier_classification_errors_total{kind="malformed_request"} 1`)
	assert.Contains(t, body, `traffic_classifier_http_requests_total{method="POST",path="/classify",status="200"} 1`)
}

func TestRecovery(t *testing.T) {
	s := newTestServer(t)
	handler := s.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/classify", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())

	rr = do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRecoveryAfterWrite(t *testing.T) {
	s := newTestServer(t)
	handler := s.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"application":`))
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/classify", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"application":`, rr.Body.String())
}

func TestServerConfigComplete(t *testing.T) {
	config := &ServerConfig{}
	assert.NoError(t, config.Complete())
	assert.Equal(t, uint16(DefaultPort), config.Port)
	assert.Equal(t, int64(DefaultMaxBodyBytes), config.MaxBodyBytes)
	assert.Equal(t, DefaultShutdownTimeout, config.ShutdownTimeout)
	assert.Equal(t, artifact.SourceFile, config.Artifact.Source)

	assert.Error(t, (&ServerConfig{Port: 80}).Complete())
	assert.Error(t, (&ServerConfig{MaxBodyBytes: -1}).Complete())
}

func TestNewServerFailsWithoutArtifacts(t *testing.T) {
	dir := t.TempDir()
	_, err := NewServer(&ServerConfig{
		Artifact: artifact.Config{
			ClassifierPath:   filepath.Join(dir, "rf_model.json"),
			ScalerPath:       filepath.Join(dir, "scaler.json"),
			LabelEncoderPath: filepath.Join(dir, "label_encoder.json"),
		},
	}, zap.NewNop())
	assert.Error(t, err)
}
