// Package logfields holds canonical log field name constants so key
// names do not drift across packages.
package logfields

import "log/slog"

const (
	KeyInvocationID = "invocation_id"
	KeyTaskPath     = "task_path"
	KeyTaskType     = "task_type"
	KeyProperty     = "property"
	KeyOutcome      = "outcome"
	KeyProblems     = "problems"
	KeyUnique       = "unique_problems"
	KeyDurationMS   = "duration_ms"
	KeyPath         = "path"
	KeyManifest     = "manifest"
	KeyReportFile   = "report_file"
	KeyError        = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func InvocationID(id string) slog.Attr { return slog.String(KeyInvocationID, id) }
func TaskPath(p string) slog.Attr      { return slog.String(KeyTaskPath, p) }
func TaskType(t string) slog.Attr      { return slog.String(KeyTaskType, t) }
func Property(name string) slog.Attr   { return slog.String(KeyProperty, name) }
func Outcome(o string) slog.Attr       { return slog.String(KeyOutcome, o) }
func Problems(n int) slog.Attr         { return slog.Int(KeyProblems, n) }
func UniqueProblems(n int) slog.Attr   { return slog.Int(KeyUnique, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Manifest(m string) slog.Attr      { return slog.String(KeyManifest, m) }
func ReportFile(f string) slog.Attr    { return slog.String(KeyReportFile, f) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
