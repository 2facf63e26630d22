package detector

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOptions(url string) Options {
	return Options{
		BaseURL:           url,
		Timeout:           2 * time.Second,
		MinConfidence:     0.3,
		RequestsPerSecond: 1000,
		Burst:             100,
		FailureThreshold:  2,
		OpenTimeout:       time.Minute,
	}
}

func TestHTTPDetectorDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		file, header, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "fridge.jpg", header.Filename)
		assert.Equal(t, []byte("jpeg-bytes"), data)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"predictions": []map[string]interface{}{
				{"label": "tomato", "confidence": 0.91234, "box": []float64{10.123, 20.456, 30.789, 40.001}},
				{"label": "onion", "confidence": 0.1, "box": []float64{1, 2, 3, 4}},
				{"label": "", "confidence": 0.99, "box": []float64{}},
			},
		})
	}))
	defer srv.Close()

	d := NewHTTPDetector(testOptions(srv.URL), zap.NewNop())
	got, err := d.Detect(context.Background(), []byte("jpeg-bytes"), "fridge.jpg")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "tomato", got[0].Label)
	assert.Equal(t, 0.912, got[0].Confidence)
	assert.Equal(t, []float64{10.12, 20.46, 30.79, 40}, got[0].Box)
}

func TestHTTPDetectorNoDetections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"predictions":[]}`))
	}))
	defer srv.Close()

	d := NewHTTPDetector(testOptions(srv.URL), zap.NewNop())
	got, err := d.Detect(context.Background(), []byte("x"), "x.png")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHTTPDetectorBreakerOpens(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewHTTPDetector(testOptions(srv.URL), zap.NewNop())
	for i := 0; i < 2; i++ {
		_, err := d.Detect(context.Background(), []byte("x"), "x.png")
		assert.ErrorIs(t, err, ErrDetectorUnavailable)
	}

	_, err := d.Detect(context.Background(), []byte("x"), "x.png")
	assert.ErrorIs(t, err, ErrDetectorUnavailable)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestHTTPDetectorRejectedImageDoesNotTrip(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	d := NewHTTPDetector(testOptions(srv.URL), zap.NewNop())
	for i := 0; i < 4; i++ {
		_, err := d.Detect(context.Background(), []byte("x"), "x.png")
		assert.ErrorIs(t, err, ErrImageRejected)
	}
	assert.Equal(t, int32(4), atomic.LoadInt32(&hits))
}

func TestHTTPDetectorHonoursContext(t *testing.T) {
	d := NewHTTPDetector(Options{
		BaseURL:           "http://127.0.0.1:1",
		Timeout:           time.Second,
		RequestsPerSecond: 0.001,
		Burst:             1,
		FailureThreshold:  5,
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	// consume the only token, then wait on a cancelled context
	d.limiter.Allow()
	cancel()

	_, err := d.Detect(ctx, []byte("x"), "x.png")
	assert.Error(t, err)
}
