package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/danmuck/docsync/internal/testutil/testlog"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("wired", "GET", "/health", 200, 12*time.Millisecond)

	before := testutil.ToFloat64(decodes.WithLabelValues("WriteResponse", "false"))
	RecordDecode("WriteResponse", 40, false)
	if got := testutil.ToFloat64(decodes.WithLabelValues("WriteResponse", "false")); got != before+1 {
		t.Fatalf("decode counter = %v, want %v", got, before+1)
	}

	dupBefore := testutil.ToFloat64(lookupDuplicates)
	RecordLookupMerge(5, 3, true)
	RecordLookupMerge(5, 0, false)
	if got := testutil.ToFloat64(lookupDuplicates); got != dupBefore+2 {
		t.Fatalf("duplicate counter = %v, want %v", got, dupBefore+2)
	}
}

func TestRequestIDAssignsOrReuses(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zerolog.Nop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := w.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil || w.Body.String() != id {
		t.Fatalf("expected generated request id, got header=%q body=%q", id, w.Body.String())
	}

	keep := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, keep)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) != keep {
		t.Fatalf("expected inbound request id to be kept")
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) == "not-a-uuid" {
		t.Fatalf("expected malformed request id to be replaced")
	}
}
