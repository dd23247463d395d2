package port

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/aelexs/timeconverter/internal/converter/app"
	"github.com/aelexs/timeconverter/internal/errmap"
	"github.com/aelexs/timeconverter/pkg/timeconv"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// pageEdits are applied in this order on top of the initial state.
var pageEdits = []app.Field{app.FieldOffset, app.FieldDateTime, app.FieldFileTime, app.FieldUnixTime}

type pageData struct {
	State     app.State
	Errors    map[string]string
	Offsets   []int
	RefreshMs int64
}

// page renders the converter page. The page starts from the current time,
// like a fresh load, and then applies each input present in the query as an
// edit. Rejected inputs keep their text and show the reason next to them.
func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	st := h.svc.InitialState(ctx, h.offset)
	errs := make(map[string]string)
	for _, f := range pageEdits {
		if !q.Has(string(f)) {
			continue
		}
		next, err := h.svc.Apply(ctx, st, app.Edit{Field: f, Value: q.Get(string(f))})
		st = next
		if err != nil {
			errs[string(f)] = errmap.ToHTTPError(err).Message
		}
	}

	offsets := make([]int, 0, timeconv.MaxOffsetHours-timeconv.MinOffsetHours+1)
	for o := timeconv.MinOffsetHours; o <= timeconv.MaxOffsetHours; o++ {
		offsets = append(offsets, o)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageData{
		State:     st,
		Errors:    errs,
		Offsets:   offsets,
		RefreshMs: h.interval.Milliseconds(),
	}); err != nil {
		h.logger.ErrorContext(ctx, "render page", slog.String("error", err.Error()))
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
