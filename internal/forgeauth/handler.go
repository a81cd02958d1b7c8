package forgeauth

import (
	"context"
	"net/http"

	"github.com/AmmannChristian/go-forgeauth/httpserver"
)

// BucketsRoute lists the application's buckets without exposing the internal token.
const BucketsRoute = "/api/forge/oss/buckets"

// BucketLister lists buckets with the internal token.
type BucketLister interface {
	ListBuckets(ctx context.Context) ([]Bucket, error)
}

type bucketsResponse struct {
	Buckets []Bucket `json:"buckets"`
}

// BucketsHandler serves the bucket listing on GET.
func BucketsHandler(lister BucketLister, logger httpserver.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			httpserver.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "only GET is supported")
			return
		}

		buckets, err := lister.ListBuckets(r.Context())
		if err != nil {
			if logger != nil {
				logger.Printf("forgeauth: list buckets: %v", err)
			}
			status := httpserver.StatusForError(err)
			httpserver.WriteError(w, status, "buckets_unavailable", http.StatusText(status))
			return
		}

		if buckets == nil {
			buckets = []Bucket{}
		}
		w.Header().Set("Cache-Control", "no-store")
		httpserver.WriteJSON(w, http.StatusOK, bucketsResponse{Buckets: buckets})
	})
}
