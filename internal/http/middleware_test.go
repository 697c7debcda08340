package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsMiddleware_DryRun(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"", false},
		{"?dry_run=true", true},
		{"?dry_run=1", true},
		{"?dry_run=false", false},
		{"?dry_run=maybe", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got bool
			h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = isDryRunFromContext(r)
				w.WriteHeader(http.StatusAccepted)
			}), paramsMiddleware)

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health"+tt.query, nil))

			assert.Equal(t, tt.want, got)
			assert.Equal(t, http.StatusAccepted, rr.Code)
		})
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("first"), mw("second"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}
