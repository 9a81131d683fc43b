package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// node is one element or leaf token of a part. Names keep their raw prefix
// in Name.Space so the part serializes with the prefixes it was read with.
type node struct {
	start    *xml.StartElement
	leaf     xml.Token
	children []*node
}

func elem(space, local string, attrs ...xml.Attr) *node {
	return &node{start: &xml.StartElement{Name: xml.Name{Space: space, Local: local}, Attr: attrs}}
}

func (n *node) is(space, local string) bool {
	return n.start != nil && n.start.Name.Space == space && n.start.Name.Local == local
}

// child returns the first direct child element named space:local.
func (n *node) child(space, local string) *node {
	for _, c := range n.children {
		if c.is(space, local) {
			return c
		}
	}
	return nil
}

func (n *node) attr(space, local string) (string, bool) {
	for _, a := range n.start.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) setAttr(space, local, value string) {
	for i, a := range n.start.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			n.start.Attr[i].Value = value
			return
		}
	}
	n.start.Attr = append(n.start.Attr, xml.Attr{Name: xml.Name{Space: space, Local: local}, Value: value})
}

// dropAttrs removes attributes by local name in any namespace.
func (n *node) dropAttrs(locals ...string) {
	kept := n.start.Attr[:0]
	for _, a := range n.start.Attr {
		if !slices.Contains(locals, a.Name.Local) {
			kept = append(kept, a)
		}
	}
	n.start.Attr = kept
}

func (n *node) remove(c *node) {
	for i, x := range n.children {
		if x == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// insertAt places c at index i, clamped to the child count.
func (n *node) insertAt(i int, c *node) {
	if i >= len(n.children) {
		n.children = append(n.children, c)
		return
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
}

// text concatenates the character data directly under n.
func (n *node) text() string {
	var b strings.Builder
	for _, c := range n.children {
		if cd, ok := c.leaf.(xml.CharData); ok {
			b.Write(cd)
		}
	}
	return b.String()
}

// parseTree reads a part into a synthetic root whose children are the
// top-level tokens.
func parseTree(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	root := &node{}
	stack := []*node{root}
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			se := t.Copy()
			n := &node{start: &se}
			top.children = append(top.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 1 {
				return nil, fmt.Errorf("unexpected </%s>", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		default:
			top.children = append(top.children, &node{leaf: xml.CopyToken(t)})
		}
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("unclosed <%s>", stack[len(stack)-1].start.Name.Local)
	}
	return root, nil
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#xD;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;")
)

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func writeTree(w *bytes.Buffer, root *node) {
	for _, c := range root.children {
		writeNode(w, c)
	}
}

func writeNode(w *bytes.Buffer, n *node) {
	if n.start == nil {
		switch t := n.leaf.(type) {
		case xml.CharData:
			w.WriteString(textEscaper.Replace(string(t)))
		case xml.Comment:
			w.WriteString("<!--")
			w.Write(t)
			w.WriteString("-->")
		case xml.ProcInst:
			w.WriteString("<?" + t.Target)
			if len(t.Inst) > 0 {
				w.WriteByte(' ')
				w.Write(t.Inst)
			}
			w.WriteString("?>")
		case xml.Directive:
			w.WriteString("<!")
			w.Write(t)
			w.WriteString(">")
		}
		return
	}
	name := qname(n.start.Name)
	w.WriteString("<" + name)
	for _, a := range n.start.Attr {
		w.WriteString(" " + qname(a.Name) + `="` + attrEscaper.Replace(a.Value) + `"`)
	}
	if len(n.children) == 0 {
		w.WriteString("/>")
		return
	}
	w.WriteByte('>')
	for _, c := range n.children {
		writeNode(w, c)
	}
	w.WriteString("</" + name + ">")
}
