package widget

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Mount element attributes.
const (
	AttrMarker    = "data-onec-schedule"
	AttrAPIBase   = "data-api-base"
	AttrStartDate = "data-start-date"
	AttrEndDate   = "data-end-date"

	// AttrState is written by Process with the mount's final State.
	AttrState = "data-state"
)

// Mount is a page element hosting one widget instance together with the
// configuration read from its attributes.
type Mount struct {
	Node *goquery.Selection

	APIBase   string
	StartDate string
	EndDate   string
}

// Configured reports whether all three required attributes are non-empty.
func (m Mount) Configured() bool {
	return m.APIBase != "" && m.StartDate != "" && m.EndDate != ""
}

// voidElements cannot have children in serialized HTML.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// Void reports whether the mount element is a void element such as <img>
// or <input>, which cannot host widget content.
func (m Mount) Void() bool {
	n := m.Node.Get(0)
	return n != nil && n.Type == html.ElementNode && voidElements[n.Data]
}

// Discover returns every element marked with AttrMarker, in document
// order. It only reads attributes.
func Discover(doc *goquery.Document) []Mount {
	sel := doc.Find("[" + AttrMarker + "]")
	mounts := make([]Mount, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		mounts = append(mounts, Mount{
			Node:      s,
			APIBase:   s.AttrOr(AttrAPIBase, ""),
			StartDate: s.AttrOr(AttrStartDate, ""),
			EndDate:   s.AttrOr(AttrEndDate, ""),
		})
	})
	return mounts
}
