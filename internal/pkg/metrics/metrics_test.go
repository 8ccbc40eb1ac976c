package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBeforeRegisterIsNoop(t *testing.T) {
	if reportSubmissions != nil {
		t.Skip("collectors already registered")
	}
	assert.NotPanics(t, func() {
		RecordReportSubmit("UN", "ok", 2)
		ObserveDashboard("admin", time.Millisecond)
		RecordMailSend("sent")
	})
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	MustRegister()
	MustRegister()

	before := testutil.ToFloat64(reportSubmissions.WithLabelValues("WV", "ok"))
	RecordReportSubmit("WV", "ok", 3)
	assert.Equal(t, before+1, testutil.ToFloat64(reportSubmissions.WithLabelValues("WV", "ok")))

	RecordReportSubmit(" ", "", 0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(reportSubmissions.WithLabelValues("unknown", "unknown")), 1.0)
}

func TestHandlerServesCollectors(t *testing.T) {
	MustRegister()
	RecordMailSend("sent")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "activity_report_mail_summary_sends_total"))
}
