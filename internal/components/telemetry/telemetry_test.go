package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := &Recorder{}
	scoped := NewScopedAPI("syllabus", NewScopedAPI("field_scanner", rec))

	scoped.ReportWarning("scan", "surplus", 3)
	scoped.ReportCount("records", 12)

	warnings := rec.Reports("warning")
	require.Len(t, warnings, 1)
	require.Equal(t, "field_scanner: syllabus: scan", warnings[0].ID)
	require.Equal(t, []any{"surplus", 3}, warnings[0].Params)

	counts := rec.Reports("count")
	require.Len(t, counts, 1)
	require.Equal(t, []any{int64(12)}, counts[0].Params)

	require.Empty(t, rec.Reports("broken"))
}
