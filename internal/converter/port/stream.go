package port

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/aelexs/timeconverter/internal/converter/app"
	"github.com/aelexs/timeconverter/internal/domain"
	"github.com/aelexs/timeconverter/internal/errmap"
	"github.com/aelexs/timeconverter/pkg/protocol"
	"github.com/aelexs/timeconverter/pkg/timeconv"
)

// stream serves the current-time fields as server-sent events: one
// stream_open frame, then a current_time frame per refresh tick until the
// client goes away or the server shuts down.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	offset, err := h.offsetParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.streamCtx.Err() != nil {
		h.writeError(w, r, fmt.Errorf("%w: shutting down", domain.ErrUnavailable))
		return
	}

	rc := http.NewResponseController(w)
	// The server write timeout would cut the stream after the first ticks.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(h.streamCtx, cancel)
	defer stop()

	streamID := middleware.GetReqID(r.Context())
	if streamID == "" {
		streamID = uuid.NewString()
	}
	logger := h.logger.With(slog.String("stream_id", streamID), slog.Int("offset_hours", offset))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	send := func(ft protocol.FrameType, payload any) error {
		frame, err := protocol.NewFrame(ft, payload)
		if err != nil {
			return err
		}
		if err := frame.WriteSSE(w); err != nil {
			return err
		}
		return rc.Flush()
	}

	if err := send(protocol.FrameTypeStreamOpen, protocol.StreamOpen{
		StreamID:          streamID,
		RefreshIntervalMs: h.interval.Milliseconds(),
		OffsetHours:       offset,
	}); err != nil {
		logger.DebugContext(ctx, "stream open failed", slog.String("error", err.Error()))
		return
	}
	logger.DebugContext(ctx, "stream opened")

	// An error frame follows the first tick of a run of ticks with
	// Invalid Date fields.
	var lastInvalid string
	err = h.svc.Refresh(ctx, h.interval, app.FixedOffset(offset), func(v app.CurrentView) error {
		if err := send(protocol.FrameTypeCurrentTime, currentTimeFrame(v)); err != nil {
			return err
		}
		invalid := strings.Join(invalidFields(v), ",")
		if invalid == "" || invalid == lastInvalid {
			lastInvalid = invalid
			return nil
		}
		lastInvalid = invalid
		logger.WarnContext(ctx, "current time rendered as invalid", slog.String("fields", invalid))
		return send(protocol.FrameTypeError, invalidDateFrame(invalid))
	})
	if err != nil {
		// The sink only fails on writes, so the client is gone.
		logger.DebugContext(ctx, "stream write failed", slog.String("error", err.Error()))
		return
	}

	if h.streamCtx.Err() != nil {
		_ = send(protocol.FrameTypeStreamClosing, protocol.StreamClosing{Reason: "server shutting down"})
	}
	logger.DebugContext(ctx, "stream closed")
}

func currentTimeFrame(v app.CurrentView) protocol.CurrentTime {
	return protocol.CurrentTime{
		OffsetHours: v.OffsetHours,
		Local:       v.Local,
		Zone:        v.Zone,
		UTC:         v.UTC,
		FileTime:    v.FileTime,
		UnixTime:    v.UnixTime,
	}
}

// invalidFields names the fields of v that read Invalid Date.
func invalidFields(v app.CurrentView) []string {
	var names []string
	for _, f := range []struct{ name, value string }{
		{"local", v.Local},
		{"zone", v.Zone},
		{"utc", v.UTC},
		{"filetime", v.FileTime},
		{"unixtime", v.UnixTime},
	} {
		if f.value == timeconv.InvalidDate {
			names = append(names, f.name)
		}
	}
	return names
}

func invalidDateFrame(fields string) protocol.Error {
	he := errmap.ToHTTPError(timeconv.ErrInvalidDate)
	return protocol.Error{
		Code:    he.Code,
		Message: "current time cannot be displayed",
		Details: map[string]string{"fields": fields},
	}
}
