package widget

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"schedwidget/internal/model"
)

func mustDoc(t *testing.T, src string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func fixedRenderer(now time.Time) *Renderer {
	return &Renderer{
		Messages: EnglishMessages,
		Now:      func() time.Time { return now },
		Location: time.UTC,
	}
}

func TestRenderEmpty(t *testing.T) {
	doc := mustDoc(t, `<div id="m"><p>old content</p></div>`)
	mount := doc.Find("#m")

	fixedRenderer(time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)).Render(mount, nil)

	if mount.Find("p").Length() != 0 {
		t.Error("previous content was not cleared")
	}
	if got := mount.Find(`[data-role="card"]`).Length(); got != 0 {
		t.Errorf("cards = %d, want 0", got)
	}
	empty := mount.Find(`[data-role="empty"]`)
	if empty.Length() != 1 {
		t.Fatalf("empty cards = %d, want 1", empty.Length())
	}
	if empty.Text() != EnglishMessages.Empty {
		t.Errorf("empty text = %q", empty.Text())
	}
	if got := mount.Find(`[data-role="title-label"]`).Text(); got != "Schedule" {
		t.Errorf("title label = %q", got)
	}
	if got := mount.Find(`[data-role="updated"]`).Text(); got != "Updated: 01.01.2024, 09:30:00" {
		t.Errorf("updated = %q", got)
	}
}

func TestRenderCardsInOrder(t *testing.T) {
	items := []model.ClassRecord{
		{Title: model.Some("C")},
		{Title: model.Some("A")},
		{Title: model.Some("B")},
	}
	doc := mustDoc(t, `<div id="m"></div>`)
	mount := doc.Find("#m")

	fixedRenderer(time.Now()).Render(mount, items)

	cards := mount.Find(`[data-role="card"]`)
	if cards.Length() != len(items) {
		t.Fatalf("cards = %d, want %d", cards.Length(), len(items))
	}
	var titles []string
	cards.Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, s.Find(`[data-role="title"]`).Text())
	})
	if strings.Join(titles, ",") != "C,A,B" {
		t.Errorf("titles = %v", titles)
	}
	if mount.Find(`[data-role="empty"]`).Length() != 0 {
		t.Error("empty card rendered for non-empty input")
	}
}

func TestRenderBadge(t *testing.T) {
	tests := []struct {
		name      string
		item      model.ClassRecord
		wantBadge string
	}{
		{"canceled wins over online", model.ClassRecord{Canceled: true, Online: true}, "Canceled"},
		{"canceled only", model.ClassRecord{Canceled: true}, "Canceled"},
		{"online only", model.ClassRecord{Online: true}, "Online"},
		{"no flags", model.ClassRecord{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDoc(t, `<div id="m"></div>`)
			mount := doc.Find("#m")
			fixedRenderer(time.Now()).Render(mount, []model.ClassRecord{tt.item})

			badge := mount.Find(`[data-role="badge"]`)
			if tt.wantBadge == "" {
				if badge.Length() != 0 {
					t.Errorf("unexpected badge %q", badge.Text())
				}
				return
			}
			if badge.Length() != 1 || badge.Text() != tt.wantBadge {
				t.Errorf("badge = %q (n=%d), want %q", badge.Text(), badge.Length(), tt.wantBadge)
			}
			if tt.item.Canceled && !strings.Contains(badge.AttrOr("style", ""), badgeCanceledColor) {
				t.Errorf("canceled badge style = %q", badge.AttrOr("style", ""))
			}
		})
	}
}

func TestRenderFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		msgs      Messages
		item      model.ClassRecord
		wantTitle string
		wantTime  string
		wantPlace string
	}{
		{
			name:      "everything missing",
			msgs:      EnglishMessages,
			item:      model.ClassRecord{},
			wantTitle: "Class",
			wantTime:  "? — ?",
			wantPlace: "— · —",
		},
		{
			name:      "sides fall back independently",
			msgs:      EnglishMessages,
			item:      model.ClassRecord{StartDate: model.Some("09:00"), Employee: model.Some("Jane")},
			wantTitle: "Class",
			wantTime:  "09:00 — ?",
			wantPlace: "— · Jane",
		},
		{
			name:      "russian strings",
			msgs:      RussianMessages,
			item:      model.ClassRecord{EndDate: model.Some("10:00"), Room: model.Some("Зал 1")},
			wantTitle: "Занятие",
			wantTime:  "Время: ? — 10:00",
			wantPlace: "Зал: Зал 1 · Тренер: —",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDoc(t, `<div id="m"></div>`)
			mount := doc.Find("#m")
			r := fixedRenderer(time.Now())
			r.Messages = tt.msgs
			r.Render(mount, []model.ClassRecord{tt.item})

			if got := mount.Find(`[data-role="title"]`).Text(); got != tt.wantTitle {
				t.Errorf("title = %q, want %q", got, tt.wantTitle)
			}
			if got := mount.Find(`[data-role="time"]`).Text(); got != tt.wantTime {
				t.Errorf("time = %q, want %q", got, tt.wantTime)
			}
			if got := mount.Find(`[data-role="place"]`).Text(); got != tt.wantPlace {
				t.Errorf("place = %q, want %q", got, tt.wantPlace)
			}
		})
	}
}

func TestRenderIdempotent(t *testing.T) {
	items := []model.ClassRecord{
		{Title: model.Some("Yoga"), Online: true},
		{Title: model.Some("Box"), Canceled: true, Room: model.Some("Ring")},
	}
	doc := mustDoc(t, `<div id="m"></div>`)
	mount := doc.Find("#m")

	fixedRenderer(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Render(mount, items)
	first, err := goquery.OuterHtml(mount.Find(`[data-role="list"]`))
	if err != nil {
		t.Fatal(err)
	}

	fixedRenderer(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)).Render(mount, items)
	second, err := goquery.OuterHtml(mount.Find(`[data-role="list"]`))
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Errorf("renders differ:\n%s\n%s", first, second)
	}
	if mount.Children().Length() != 2 {
		t.Errorf("mount children = %d, want header + list", mount.Children().Length())
	}
}

func TestRenderEscapesText(t *testing.T) {
	doc := mustDoc(t, `<div id="m"></div>`)
	mount := doc.Find("#m")
	fixedRenderer(time.Now()).Render(mount, []model.ClassRecord{{Title: model.Some("<script>x</script>")}})

	if mount.Find("script").Length() != 0 {
		t.Error("title was interpreted as markup")
	}
	h, err := goquery.OuterHtml(mount)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h, "&lt;script&gt;") {
		t.Errorf("escaped title missing from %s", h)
	}
}

func TestTimestampLayout(t *testing.T) {
	r := &Renderer{
		Now:      func() time.Time { return time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC) },
		Location: time.UTC,
		Layout:   time.RFC3339,
	}
	if got := r.Timestamp(); got != "2024-03-05T07:08:09Z" {
		t.Errorf("Timestamp = %q", got)
	}
}
