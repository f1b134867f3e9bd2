package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(ArtifactsSaved.WithLabelValues("notes"))
	IncArtifactSaved("notes")
	if got := testutil.ToFloat64(ArtifactsSaved.WithLabelValues("notes")); got != before+1 {
		t.Errorf("artifacts_saved_total{kind=notes} = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(ReminderEmails.WithLabelValues("sent"))
	IncReminderEmail("sent")
	if got := testutil.ToFloat64(ReminderEmails.WithLabelValues("sent")); got != before+1 {
		t.Errorf("reminder_emails_total{status=sent} = %v, want %v", got, before+1)
	}
}

func TestRecordRequest(t *testing.T) {
	RecordRequest("GET", "/pages/{slug}/download/{name}", 200, 0.01)
	if got := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/pages/{slug}/download/{name}", "200")); got < 1 {
		t.Errorf("http_requests_total not recorded under the route pattern, got %v", got)
	}
}
