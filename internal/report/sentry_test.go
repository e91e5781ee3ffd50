package report_test

import (
	"errors"
	"testing"

	"pendler.kildedal.dk/internal/report"
)

func TestSetupWithoutDSN(t *testing.T) {
	// Without a DSN the package stays disabled and every call is a no-op.
	t.Setenv("SENTRY_DSN", "")

	report.Setup()
	if report.Enabled() {
		t.Error("expected reporting to be disabled without SENTRY_DSN")
	}

	// None of these may panic while disabled.
	report.ConfigureScope("test", "0.0.0")
	report.ReportError(errors.New("boom"))
	report.ReportError(nil)
	report.ReportErrorWithOptions(errors.New("boom"), report.Options{
		Tags: map[string]string{"handler": "trips"},
	})
	report.Flush()
}

func TestSetupWithDSN(t *testing.T) {
	t.Setenv("SENTRY_DSN", "https://public@sentry.example.com/1")

	report.Setup()
	report.ConfigureScope("test", "0.0.0")
	report.Flush()
}
