package metrics

import "time"

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordRevision records the outcome and duration of a revision attempt.
// failedStage is ignored on success.
func RecordRevision(strategy string, success bool, failedStage string, duration time.Duration) {
	RevisionsTotal.WithLabelValues(strategy, statusLabel(success)).Inc()
	RevisionDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if !success {
		RevisionFailuresByStage.WithLabelValues(failedStage).Inc()
	}
}

// RecordProviderCall records a single provider call.
// Kind is one of "generate", "humanize" or "enrich".
func RecordProviderCall(provider, kind string, success bool) {
	ProviderCallsTotal.WithLabelValues(provider, kind, statusLabel(success)).Inc()
}

// RecordVersionCreated records an appended version.
func RecordVersionCreated(versionType string) {
	VersionsCreatedTotal.WithLabelValues(versionType).Inc()
}

// RecordEligibility records one eligibility evaluation.
func RecordEligibility(eligible bool) {
	result := "eligible"
	if !eligible {
		result = "ineligible"
	}
	EligibilityChecksTotal.WithLabelValues(result).Inc()
}

// RecordAutopublishCycle records the per-outcome counts and duration of a cycle.
func RecordAutopublishCycle(published, failed, skipped int, duration time.Duration) {
	AutopublishItemsTotal.WithLabelValues("published").Add(float64(published))
	AutopublishItemsTotal.WithLabelValues("failed").Add(float64(failed))
	AutopublishItemsTotal.WithLabelValues("skipped").Add(float64(skipped))
	AutopublishCycleDuration.Observe(duration.Seconds())
}
