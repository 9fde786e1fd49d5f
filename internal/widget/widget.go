package widget

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	appLog "schedwidget/internal/log"
	"schedwidget/internal/model"
)

// State is the lifecycle position of a single mount.
type State string

const (
	StateUnconfigured State = "unconfigured"
	StateLoading      State = "loading"
	StateRendered     State = "rendered"
	StateFailed       State = "failed"
)

// ErrVoidMount is the Result.Err of a mount placed on a void element.
var ErrVoidMount = errors.New("mount element cannot hold content")

// Fetcher loads the class list for one mount.
type Fetcher interface {
	FetchClasses(ctx context.Context, apiBase, startDate, endDate string) ([]model.ClassRecord, error)
}

// Result describes what happened to one mount.
type Result struct {
	Mount Mount
	State State
	// Count is the number of rendered classes (StateRendered only).
	Count int
	// Err is the fetch-phase error (StateFailed only).
	Err error
}

// Widget discovers mounts in a document and fills each one with its
// schedule.
type Widget struct {
	Fetcher  Fetcher
	Renderer *Renderer
}

// New returns a Widget wired to f and r.
func New(f Fetcher, r *Renderer) *Widget {
	return &Widget{Fetcher: f, Renderer: r}
}

// Process runs one page load over doc. Mounts are handled one at a time
// in document order; a failing mount never stops the ones after it.
func (w *Widget) Process(ctx context.Context, doc *goquery.Document) []Result {
	mounts := Discover(doc)
	if len(mounts) == 0 {
		return nil
	}

	runID := uuid.NewString()
	appLog.Debug("widget page load", "run_id", runID, "mounts", len(mounts))

	results := make([]Result, 0, len(mounts))
	for i, m := range mounts {
		res := w.processMount(ctx, m)
		results = append(results, res)

		kv := []any{"run_id", runID, "mount", i, "state", string(res.State)}
		if m.APIBase != "" {
			kv = append(kv, "api_base", appLog.RedactURL(m.APIBase))
		}
		switch res.State {
		case StateFailed:
			appLog.Info("widget mount failed", append(kv, "err", res.Err)...)
		case StateRendered:
			appLog.Debug("widget mount rendered", append(kv, "count", res.Count)...)
		default:
			appLog.Debug("widget mount skipped", kv...)
		}
	}
	return results
}

func (w *Widget) processMount(ctx context.Context, m Mount) Result {
	msgs := w.Renderer.Messages
	applyMountStyle(m.Node)

	if m.Void() {
		m.Node.SetAttr(AttrState, string(StateFailed))
		return Result{Mount: m, State: StateFailed, Err: ErrVoidMount}
	}

	if !m.Configured() {
		m.Node.SetText(msgs.NotConfigured)
		m.Node.SetAttr(AttrState, string(StateUnconfigured))
		return Result{Mount: m, State: StateUnconfigured}
	}

	m.Node.SetText(msgs.Loading)
	m.Node.SetAttr(AttrState, string(StateLoading))

	items, err := w.Fetcher.FetchClasses(ctx, m.APIBase, m.StartDate, m.EndDate)
	if err != nil {
		m.Node.SetText(msgs.LoadErrorPrefix + err.Error())
		m.Node.SetAttr(AttrState, string(StateFailed))
		return Result{Mount: m, State: StateFailed, Err: err}
	}

	w.Renderer.Render(m.Node, items)
	m.Node.SetAttr(AttrState, string(StateRendered))
	return Result{Mount: m, State: StateRendered, Count: len(items)}
}

// ProcessHTML parses a complete HTML document from r, runs Process on it
// and writes the resulting document to out. Nothing is written to out if
// the document cannot be serialized.
func (w *Widget) ProcessHTML(ctx context.Context, r io.Reader, out io.Writer) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	results := w.Process(ctx, doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc.Get(0)); err != nil {
		return results, err
	}
	if _, err := buf.WriteTo(out); err != nil {
		return results, err
	}
	return results, nil
}

const (
	mountFontFamily = "system-ui, -apple-system, Segoe UI, Roboto, Arial"
	mountMaxWidth   = "920px"
)

// applyMountStyle sets the widget font and a default max-width unless the
// page already gives the mount one.
func applyMountStyle(s *goquery.Selection) {
	st := s.AttrOr("style", "")
	st = mergeStyle(st, "font-family", mountFontFamily, false)
	st = mergeStyle(st, "max-width", mountMaxWidth, true)
	s.SetAttr("style", st)
}
