package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/maruel/blogdb/internal/jsonstore"
)

// scrape returns the text exposition of Registry.
func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	return w.Body.String()
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "unmatched"},
		{"/", "/"},
		{"GET /api/v1/users", "/api/v1/users"},
		{"PATCH /api/v1/users/{id}", "/api/v1/users/{id}"},
		{"GET /api/v1/posts/{id}/comments", "/api/v1/posts/{id}/comments"},
	}
	for _, tt := range tests {
		if got := RouteLabel(tt.in); got != tt.want {
			t.Errorf("RouteLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInstrumentHandler(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /instrumented/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := InstrumentHandler(mux)

	t.Run("matched route", func(t *testing.T) {
		for _, id := range []string{"7", "abc7"} {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/instrumented/"+id, nil))
		}
		want := `blogdb_http_requests_total{method="GET",path="/instrumented/{id}",status="418"} 2`
		if out := scrape(t); !strings.Contains(out, want) {
			t.Errorf("metrics output lacks %s", want)
		}
	})

	t.Run("unknown paths share one series", func(t *testing.T) {
		for i := range 100 {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/scan/x%d", i), nil))
			if w.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", w.Code)
			}
		}
		out := scrape(t)
		if strings.Contains(out, "/scan/") {
			t.Error("request paths leaked into metric labels")
		}
		want := `blogdb_http_requests_total{method="GET",path="unmatched",status="404"} 100`
		if !strings.Contains(out, want) {
			t.Errorf("metrics output lacks %s", want)
		}
		series := 0
		for line := range strings.Lines(out) {
			if strings.HasPrefix(line, "blogdb_http_requests_total{") {
				series++
			}
		}
		if series > 2 {
			t.Errorf("blogdb_http_requests_total has %d series, want at most 2", series)
		}
	})
}

func TestRecordTableOp(t *testing.T) {
	RecordTableOp("optest", jsonstore.OpGet, time.Millisecond, nil)
	RecordTableOp("optest", jsonstore.OpGet, time.Millisecond, jsonstore.ErrNotFound)
	RecordTableOp("optest", jsonstore.OpGet, time.Millisecond, errors.New("disk full"))
	out := scrape(t)
	for _, result := range []string{"ok", "not_found", "error"} {
		want := `blogdb_table_operations_total{op="get",result="` + result + `",table="optest"} 1`
		if !strings.Contains(out, want) {
			t.Errorf("metrics output lacks %s", want)
		}
	}
}
