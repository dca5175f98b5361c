package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/2beens/gymbalance/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRequest_AssignsRequestID(t *testing.T) {
	var seenID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
	})

	rr := httptest.NewRecorder()
	LogRequest()(next).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	require.NotEmpty(t, seenID)
	assert.Len(t, seenID, 36)
	assert.Equal(t, seenID, rr.Header().Get(RequestIDHeader))
}

func TestLogRequest_KeepsClientRequestID(t *testing.T) {
	var seenID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "client-req-1")
	rr := httptest.NewRecorder()
	LogRequest()(next).ServeHTTP(rr, req)

	assert.Equal(t, "client-req-1", seenID)
	assert.Equal(t, "client-req-1", rr.Header().Get(RequestIDHeader))
}

func TestRequestMetrics(t *testing.T) {
	metricsManager := metrics.NewTestManager()

	r := mux.NewRouter()
	r.Use(RequestMetrics(metricsManager))
	r.HandleFunc("/workouts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}).Methods("POST").Name("save-workout")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("POST", "/workouts", nil))
	require.Equal(t, http.StatusCreated, rr.Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRequests.WithLabelValues("POST", "201")))
	assert.Equal(t, 1, testutil.CollectAndCount(metricsManager.HistogramRequestDuration))
}

func TestDrainAndCloseRequest(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader("sets=3&reps=10")}
	req := httptest.NewRequest("POST", "/workouts", nil)
	req.Body = body

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	DrainAndCloseRequest()(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, body.closed)
	rest, _ := io.ReadAll(body.Reader)
	assert.Empty(t, rest)
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}
