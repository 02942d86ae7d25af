package r25

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Node is one element of a parsed XML response. Names are stored without their namespace
// prefix so "r25:reservation" and "reservation" address the same element.
//
// Every accessor is safe to call on a nil *Node, missing elements read as empty values.
type Node struct {
	Name     string
	Attrs    map[string]string
	Value    string
	Children []*Node
}

func localName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Child returns the first direct child with the given name.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	name = localName(name)
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Get follows a path of child names, returning nil as soon as one is missing.
func (n *Node) Get(path ...string) *Node {
	current := n
	for _, name := range path {
		current = current.Child(name)
		if current == nil {
			return nil
		}
	}
	return current
}

// All returns every direct child with the given name, in document order.
func (n *Node) All(name string) []*Node {
	if n == nil {
		return nil
	}
	name = localName(name)
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Text returns the trimmed character data of the node.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return n.Value
}

// Attr returns an attribute value or "" if it is not set.
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	return n.Attrs[localName(name)]
}

// String returns the text at the given path, or "" if any part of it is missing.
func (n *Node) String(path ...string) string {
	return n.Get(path...).Text()
}

// Lookup is String but it also reports whether the path exists with non-blank text.
func (n *Node) Lookup(path ...string) (string, bool) {
	text := n.String(path...)
	return text, text != ""
}

// ParseXML reads a whole XML document into a tree and returns its root element.
// A body with no elements at all yields a nil root and no error.
func ParseXML(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	decoder.Entity = xml.HTMLEntity

	var root *Node
	var stack []*Node
	var text []*bytes.Buffer

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				if node.Attrs == nil {
					node.Attrs = map[string]string{}
				}
				node.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			} else if root == nil {
				root = node
			}
			stack = append(stack, node)
			text = append(text, &bytes.Buffer{})
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unexpected end element %s", t.Name.Local)
			}
			node := stack[len(stack)-1]
			node.Value = strings.TrimSpace(text[len(text)-1].String())
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
		}
	}

	if len(stack) > 0 {
		return nil, fmt.Errorf("unclosed element %s", stack[len(stack)-1].Name)
	}
	return root, nil
}
