package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRevision(t *testing.T) {
	before := testutil.ToFloat64(RevisionsTotal.WithLabelValues("refresh", "failure"))
	stageBefore := testutil.ToFloat64(RevisionFailuresByStage.WithLabelValues("generating"))

	RecordRevision("refresh", false, "generating", 2*time.Second)

	assert.Equal(t, before+1, testutil.ToFloat64(RevisionsTotal.WithLabelValues("refresh", "failure")))
	assert.Equal(t, stageBefore+1, testutil.ToFloat64(RevisionFailuresByStage.WithLabelValues("generating")))

	assert.NotPanics(t, func() { RecordRevision("refresh", true, "", time.Second) })
}

func TestRecordProviderCall(t *testing.T) {
	before := testutil.ToFloat64(ProviderCallsTotal.WithLabelValues("claude", "generate", "success"))
	RecordProviderCall("claude", "generate", true)
	assert.Equal(t, before+1, testutil.ToFloat64(ProviderCallsTotal.WithLabelValues("claude", "generate", "success")))
}

func TestRecordEligibility(t *testing.T) {
	before := testutil.ToFloat64(EligibilityChecksTotal.WithLabelValues("ineligible"))
	RecordEligibility(false)
	assert.Equal(t, before+1, testutil.ToFloat64(EligibilityChecksTotal.WithLabelValues("ineligible")))
}

func TestRecordAutopublishCycle(t *testing.T) {
	before := testutil.ToFloat64(AutopublishItemsTotal.WithLabelValues("published"))
	RecordAutopublishCycle(3, 1, 2, 500*time.Millisecond)
	assert.Equal(t, before+3, testutil.ToFloat64(AutopublishItemsTotal.WithLabelValues("published")))
}

func TestRecordHTTPRequest(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordHTTPRequest("GET", "/articles/{id}/versions", "200", 10*time.Millisecond)
	})
}
