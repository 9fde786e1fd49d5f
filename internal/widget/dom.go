package widget

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// el builds an element node with ordered attributes and children.
func el(tag string, a []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     a,
	}
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attrs(a ...html.Attribute) []html.Attribute {
	return a
}

func role(name string) html.Attribute {
	return html.Attribute{Key: "data-role", Val: name}
}

// style joins "property: value" declarations into a style attribute.
func style(decls ...string) html.Attribute {
	return html.Attribute{Key: "style", Val: strings.Join(decls, "; ")}
}

// declaration is one "property: value" pair of an inline style.
type declaration struct {
	prop, value string
}

func parseStyle(s string) []declaration {
	var out []declaration
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" {
			continue
		}
		out = append(out, declaration{prop: prop, value: value})
	}
	return out
}

func formatStyle(decls []declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.prop+": "+d.value)
	}
	return strings.Join(parts, "; ")
}

// mergeStyle sets prop to value in the inline style s. When keep is true
// an existing non-empty value wins.
func mergeStyle(s, prop, value string, keep bool) string {
	decls := parseStyle(s)
	for i, d := range decls {
		if d.prop != prop {
			continue
		}
		if !keep || d.value == "" {
			decls[i].value = value
		}
		return formatStyle(decls)
	}
	return formatStyle(append(decls, declaration{prop: prop, value: value}))
}
