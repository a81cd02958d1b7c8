package forgeauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AmmannChristian/go-forgeauth/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bucketListerFunc func(ctx context.Context) ([]Bucket, error)

func (f bucketListerFunc) ListBuckets(ctx context.Context) ([]Bucket, error) {
	return f(ctx)
}

func TestBucketsHandler_Success(t *testing.T) {
	handler := BucketsHandler(bucketListerFunc(func(context.Context) ([]Bucket, error) {
		return []Bucket{{Key: "models", CreatedAt: 1, Policy: "persistent"}}, nil
	}), nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, BucketsRoute, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body bucketsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []Bucket{{Key: "models", CreatedAt: 1, Policy: "persistent"}}, body.Buckets)
}

func TestBucketsHandler_EmptyListIsArray(t *testing.T) {
	handler := BucketsHandler(bucketListerFunc(func(context.Context) ([]Bucket, error) {
		return nil, nil
	}), nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, BucketsRoute, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"buckets":[]}`, rec.Body.String())
}

func TestBucketsHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "secret store down", err: fmt.Errorf("%w: timeout", secrets.ErrSecretStoreUnreachable), wantStatus: http.StatusServiceUnavailable},
		{name: "upstream failure", err: errors.New("forgeauth: list buckets: unexpected status 500"), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			handler := BucketsHandler(bucketListerFunc(func(context.Context) ([]Bucket, error) {
				return nil, tt.err
			}), logger)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, BucketsRoute, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), "buckets_unavailable")
			require.Len(t, logger.messages, 1)
		})
	}
}

func TestBucketsHandler_MethodNotAllowed(t *testing.T) {
	called := false
	handler := BucketsHandler(bucketListerFunc(func(context.Context) ([]Bucket, error) {
		called = true
		return nil, nil
	}), nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, BucketsRoute, nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.False(t, called)
}

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Printf(format string, args ...any) {
	l.messages = append(l.messages, fmt.Sprintf(format, args...))
}
