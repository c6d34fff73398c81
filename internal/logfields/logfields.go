package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyJobID      = "job_id"
	KeyEventKind  = "event_kind"
	KeyPosition   = "position"
	KeyTarget     = "target"
	KeyStatus     = "status"
	KeyMode       = "mode"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func JobID(id string) slog.Attr       { return slog.String(KeyJobID, id) }
func EventKind(k string) slog.Attr    { return slog.String(KeyEventKind, k) }
func Position(p int64) slog.Attr      { return slog.Int64(KeyPosition, p) }
func Target(url string) slog.Attr     { return slog.String(KeyTarget, url) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
