package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeySource     = "source"
	KeyPermalink  = "permalink"
	KeyTag        = "tag"
	KeyPosts      = "posts"
	KeyTags       = "tags"
	KeyIssues     = "issues"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Permalink(p string) slog.Attr    { return slog.String(KeyPermalink, p) }
func Tag(t string) slog.Attr          { return slog.String(KeyTag, t) }
func Posts(n int) slog.Attr           { return slog.Int(KeyPosts, n) }
func Tags(n int) slog.Attr            { return slog.Int(KeyTags, n) }
func Issues(n int) slog.Attr          { return slog.Int(KeyIssues, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
