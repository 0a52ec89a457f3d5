package termsnap

import (
	"bufio"
	"html"
	"io"
	"sort"
	"strings"
)

// RenderHTML writes the visual tree as HTML markup with inline styles.
// Text and attribute values are escaped; the markup carries no script.
func RenderHTML(w io.Writer, n *Node) error {
	bw := bufio.NewWriter(w)
	writeNode(bw, n)
	return bw.Flush()
}

// HTML returns the markup of the visual tree.
func HTML(n *Node) string {
	var b strings.Builder
	_ = RenderHTML(&b, n)
	return b.String()
}

func writeNode(w *bufio.Writer, n *Node) {
	if n == nil {
		return
	}

	w.WriteByte('<')
	w.WriteString(n.Tag)

	names := make([]string, 0, len(n.Attrs))
	for name := range n.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writeAttr(w, name, n.Attrs[name])
	}
	if n.Style.Len() > 0 {
		writeAttr(w, "style", n.Style.String())
	}
	w.WriteByte('>')

	w.WriteString(html.EscapeString(n.Text))
	for _, c := range n.Children {
		writeNode(w, c)
	}

	w.WriteString("</")
	w.WriteString(n.Tag)
	w.WriteByte('>')
}

func writeAttr(w *bufio.Writer, name, value string) {
	w.WriteByte(' ')
	w.WriteString(name)
	w.WriteString(`="`)
	w.WriteString(html.EscapeString(value))
	w.WriteByte('"')
}
