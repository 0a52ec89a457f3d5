package termsnap

import (
	"strconv"
	"strings"
)

// Role identifies what a node draws.
type Role string

const (
	RoleFrame         Role = "frame"
	RolePanel         Role = "panel"
	RoleChrome        Role = "chrome"
	RoleChromeGroup   Role = "chrome-group"
	RoleChromeDot     Role = "chrome-dot"
	RoleChromeTitle   Role = "chrome-title"
	RoleChromeControl Role = "chrome-control"
	RoleContent       Role = "content"
	RoleText          Role = "text"
	RoleRun           Role = "run"
)

// Attribute names and values used on the visual tree.
const (
	AttrScrollable = "data-scrollable"
	AttrRole       = "data-role"
	AttrLabel      = "aria-label"
)

// Style properties touched by the capture pipeline.
const (
	PropMaxHeight = "max-height"
	PropOverflow  = "overflow"
)

// Style is an ordered set of CSS-like properties.
// Setting a property to "" removes it, like assigning "" on a DOM style.
type Style struct {
	props []styleProp
}

type styleProp struct {
	name  string
	value string
}

// Get returns the value of a property, or "" when unset.
func (s *Style) Get(name string) string {
	for _, p := range s.props {
		if p.name == name {
			return p.value
		}
	}
	return ""
}

// Set assigns a property in place, appending it when new.
func (s *Style) Set(name, value string) {
	for i, p := range s.props {
		if p.name != name {
			continue
		}
		if value == "" {
			s.props = append(s.props[:i], s.props[i+1:]...)
		} else {
			s.props[i].value = value
		}
		return
	}
	if value != "" {
		s.props = append(s.props, styleProp{name: name, value: value})
	}
}

// Len returns the number of properties set.
func (s *Style) Len() int {
	return len(s.props)
}

// String renders the style as an inline CSS declaration list.
func (s *Style) String() string {
	var b strings.Builder
	for i, p := range s.props {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.name)
		b.WriteString(": ")
		b.WriteString(p.value)
		b.WriteByte(';')
	}
	return b.String()
}

// Node is one box of the visual tree produced by Compose.
type Node struct {
	Role     Role
	Tag      string
	Attrs    map[string]string
	Style    Style
	Text     string
	Children []*Node
}

func newNode(role Role, tag string) *Node {
	return &Node{Role: role, Tag: tag, Attrs: map[string]string{AttrRole: string(role)}}
}

// Attr returns an attribute value, or "" when unset.
func (n *Node) Attr(name string) string {
	return n.Attrs[name]
}

// SetAttr assigns an attribute.
func (n *Node) SetAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

// Append adds children and returns n.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Walk visits n and its descendants depth-first in document order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// QueryAll returns the descendants of n (n itself excluded) whose attribute
// name equals value, in document order.
func (n *Node) QueryAll(name, value string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		c.Walk(func(d *Node) bool {
			if d.Attrs[name] == value {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

// Find returns the first node with the given role, including n itself.
func (n *Node) Find(role Role) *Node {
	var found *Node
	n.Walk(func(d *Node) bool {
		if found != nil {
			return false
		}
		if d.Role == role {
			found = d
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node with the given role, including n itself.
func (n *Node) FindAll(role Role) []*Node {
	var out []*Node
	n.Walk(func(d *Node) bool {
		if d.Role == role {
			out = append(out, d)
		}
		return true
	})
	return out
}

// px formats a CSS pixel length.
func px(v int) string {
	return strconv.Itoa(v) + "px"
}

// parsePx reads a CSS pixel length. It returns false for "", "none" and
// anything that is not a plain "<n>px" or "<n>" value.
func parsePx(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" || v == "none" {
		return 0, false
	}
	v = strings.TrimSuffix(v, "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return int(f + 0.5), true
}
