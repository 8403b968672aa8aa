package client

import (
	"context"
	"encoding/json"
	"github.com/packagewjx/traffic-classifier/pkg/core"
	"github.com/stretchr/testify/assert"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newFakeServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
	mux.HandleFunc("/classify", func(w http.ResponseWriter, r *http.Request) {
		features := core.Features{}
		if err := json.NewDecoder(r.Body).Decode(&features); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad body"}`))
			return
		}
		if _, ok := features["bad"]; ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"特征bad的值必须是数字"}`))
			return
		}
		_, _ = w.Write([]byte(`{"application":"VoIP","confidence":0.8,"priority":"HIGH","inference_time_ms":0.3}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestApiClient(t *testing.T) {
	server := newFakeServer(t)
	c := NewApiClient(server.URL + "/")

	health, err := c.Health(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, core.HealthyStatus, health.Status)

	result, err := c.Classify(context.Background(), core.Features{"duration": 1.5})
	assert.NoError(t, err)
	assert.Equal(t, &core.Classification{
		Application:     "VoIP",
		Confidence:      0.8,
		Priority:        core.PriorityHigh,
		InferenceTimeMs: 0.3,
	}, result)

	_, err = c.Classify(context.Background(), core.Features{"bad": 1})
	apiErr, ok := err.(*APIError)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Contains(t, apiErr.Message, "bad")
	}
}

func TestApiClientUnreachable(t *testing.T) {
	server := newFakeServer(t)
	url := server.URL
	server.Close()

	_, err := NewApiClient(url).Health(context.Background())
	assert.Error(t, err)
}
