package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordedReport struct {
	kind   string
	id     string
	params []any
}

type recordingAPI struct {
	reports *[]recordedReport
}

func (r recordingAPI) ReportBroken(id string, params ...any) {
	*r.reports = append(*r.reports, recordedReport{"broken", id, params})
}

func (r recordingAPI) ReportWarning(id string, params ...any) {
	*r.reports = append(*r.reports, recordedReport{"warning", id, params})
}

func (r recordingAPI) ReportDebug(msg string, params ...any) {
	*r.reports = append(*r.reports, recordedReport{"debug", msg, params})
}

func (r recordingAPI) ReportCount(id string, count int64) {
	*r.reports = append(*r.reports, recordedReport{"count", id, []any{count}})
}

func TestScopedAPI(t *testing.T) {
	var reports []recordedReport
	scoped := NewScopedAPI("synchronizer", recordingAPI{reports: &reports})

	scoped.ReportBroken("db.query", "x")
	scoped.ReportWarning("reconcile.missing-player", "y")
	scoped.ReportDebug("step", 1)
	scoped.ReportCount("snapshots", 3)

	require.Equal(t, []recordedReport{
		{"broken", "synchronizer: db.query", []any{"x"}},
		{"warning", "synchronizer: reconcile.missing-player", []any{"y"}},
		{"debug", "synchronizer: step", []any{1}},
		{"count", "synchronizer: snapshots", []any{int64(3)}},
	}, reports)
}

func TestNestedScopedAPI(t *testing.T) {
	var reports []recordedReport
	inner := NewScopedAPI("comunio_scraper", recordingAPI{reports: &reports})
	outer := NewScopedAPI("session", inner)

	outer.ReportWarning("connect")
	require.Len(t, reports, 1)
	require.Equal(t, "comunio_scraper: session: connect", reports[0].id)
}

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "test", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}
