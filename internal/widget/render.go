package widget

import (
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"schedwidget/internal/model"
)

// DefaultTimestampLayout mirrors the ru-RU short date-time format.
const DefaultTimestampLayout = "02.01.2006, 15:04:05"

const badgeCanceledColor = "#b91c1c"
const badgeOnlineColor = "#111827"

// Renderer turns a class list into widget markup.
type Renderer struct {
	Messages Messages

	// Now returns the "updated" time; nil means time.Now.
	Now func() time.Time
	// Location for the timestamp; nil means time.Local.
	Location *time.Location
	// Layout for the timestamp; empty means DefaultTimestampLayout.
	Layout string
}

// NewRenderer returns a Renderer using the wall clock in the local zone.
func NewRenderer(msgs Messages) *Renderer {
	return &Renderer{Messages: msgs}
}

// Timestamp formats the current time for the header.
func (r *Renderer) Timestamp() string {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	layout := r.Layout
	if layout == "" {
		layout = DefaultTimestampLayout
	}
	return now().In(loc).Format(layout)
}

// Render replaces all content of mount with the header and one card per
// item, or the empty-state card when items is empty.
func (r *Renderer) Render(mount *goquery.Selection, items []model.ClassRecord) {
	mount.Empty()
	mount.AppendNodes(r.header(), r.list(items))
}

func (r *Renderer) header() *html.Node {
	return el("div", attrs(role("header"), style("display: flex", "justify-content: space-between", "align-items: center")),
		el("div", attrs(role("title-label"), style("font-weight: 600")), text(r.Messages.Title)),
		el("div", attrs(role("updated"), style("font-size: 12px", "opacity: 0.7")), text(r.Messages.UpdatedPrefix+r.Timestamp())),
	)
}

func (r *Renderer) list(items []model.ClassRecord) *html.Node {
	list := el("div", attrs(role("list"), style("display: grid", "gap: 10px", "margin-top: 12px")))

	if len(items) == 0 {
		list.AppendChild(el("div",
			attrs(role("empty"), style("padding: 12px", "border: 1px solid #eee", "border-radius: 12px")),
			text(r.Messages.Empty),
		))
		return list
	}

	for _, it := range items {
		list.AppendChild(r.card(it))
	}
	return list
}

func (r *Renderer) card(it model.ClassRecord) *html.Node {
	m := r.Messages

	timeLine := m.TimePrefix + it.StartDate.Or(m.UnknownTime) + " — " + it.EndDate.Or(m.UnknownTime)
	placeLine := m.RoomPrefix + it.Room.Or(m.NoValue) + m.PlaceSeparator + m.StaffPrefix + it.Employee.Or(m.NoValue)

	return el("div",
		attrs(role("card"), style("padding: 12px", "border: 1px solid #eee", "border-radius: 12px", "background: #fff")),
		el("div", attrs(style("display: flex", "gap: 8px", "align-items: baseline")),
			el("div", attrs(role("title"), style("font-weight: 650")), text(it.Title.Or(m.UntitledClass))),
			r.badge(it),
		),
		el("div", attrs(role("time"), style("margin-top: 6px", "font-size: 13px", "opacity: 0.85")), text(timeLine)),
		el("div", attrs(role("place"), style("margin-top: 4px", "font-size: 13px", "opacity: 0.85")), text(placeLine)),
	)
}

// badge returns nil when the class is neither canceled nor online.
// Canceled takes precedence.
func (r *Renderer) badge(it model.ClassRecord) *html.Node {
	var label, color string
	switch {
	case it.Canceled:
		label, color = r.Messages.Canceled, badgeCanceledColor
	case it.Online:
		label, color = r.Messages.Online, badgeOnlineColor
	default:
		return nil
	}

	return el("span",
		attrs(role("badge"), style("font-size: 12px", "padding: 2px 8px", "border-radius: 999px", "border: 1px solid #eee", "color: "+color)),
		text(label),
	)
}
