package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordMutation(t *testing.T) {
	before := testutil.ToFloat64(mutations.WithLabelValues("book_class", OutcomeRejected))
	RecordMutation("book_class", OutcomeRejected)
	RecordMutation("book_class", OutcomeRejected)
	after := testutil.ToFloat64(mutations.WithLabelValues("book_class", OutcomeRejected))
	assert.Equal(t, before+2, after)
}

func TestRecordAICall(t *testing.T) {
	before := testutil.ToFloat64(aiCalls.WithLabelValues("coach", OutcomeStale))
	RecordAICall("coach", OutcomeStale, 300*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(aiCalls.WithLabelValues("coach", OutcomeStale)))
}

func TestGinMiddleware_ObservesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/classes/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/classes/abc", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, 1, testutil.CollectAndCount(requestDuration, "gym_dashboard_http_request_duration_seconds"))
}
