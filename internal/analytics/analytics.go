package analytics

import (
	"context"
	"log/slog"

	"github.com/DEFRA/assurance-frontend-sub000/internal/session"
)

// PageView describes the request being tracked. Only facts already in the
// request are carried; the sink must not need anything else.
type PageView struct {
	Path      string
	Referer   string
	UserAgent string
	IPAddress string
}

// Sink receives visitor events. The contract is fire-and-forget: callers
// swallow every error, so implementations may be arbitrarily unreliable
// without affecting the request pipeline.
type Sink interface {
	TrackUniqueVisitor(ctx context.Context, pv PageView, v *session.Visitor) error
	TrackPageView(ctx context.Context, pv PageView, v *session.Visitor, isNewVisitor bool) error
}

// LogSink records events on the structured log at debug level. It stands
// in for the real analytics backend, which is deployed separately.
type LogSink struct {
	Logger *slog.Logger
}

func (s *LogSink) TrackUniqueVisitor(ctx context.Context, pv PageView, v *session.Visitor) error {
	s.Logger.DebugContext(ctx, "analytics: unique visitor",
		"visitor_id", v.ID,
		"path", pv.Path,
		"user_agent", pv.UserAgent,
	)
	return nil
}

func (s *LogSink) TrackPageView(ctx context.Context, pv PageView, v *session.Visitor, isNewVisitor bool) error {
	s.Logger.DebugContext(ctx, "analytics: page view",
		"visitor_id", v.ID,
		"path", pv.Path,
		"page_views", v.PageViews,
		"new_visitor", isNewVisitor,
	)
	return nil
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) TrackUniqueVisitor(context.Context, PageView, *session.Visitor) error {
	return nil
}

func (NopSink) TrackPageView(context.Context, PageView, *session.Visitor, bool) error {
	return nil
}
