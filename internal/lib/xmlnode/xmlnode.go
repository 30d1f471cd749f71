package xmlnode

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/beevik/etree"
)

var (
	ErrNilChild       = errors.New("nil child")
	ErrInvalidContent = errors.New("invalid content")
)

// Node wraps a single XML element.
type Node struct {
	el *etree.Element
}

// New returns a new element node with the given tag.
func New(name string) *Node {
	return &Node{el: etree.NewElement(name)}
}

// SetAttr sets a string attribute, overwriting a previous
// value for the same name.
func (n *Node) SetAttr(name, value string) {
	n.el.CreateAttr(name, value)
}

// SetContent sets text content of the node.
func (n *Node) SetContent(text string) {
	n.el.SetText(text)
}

// AddChild appends child to the node. Fails if child is nil
// or carries text that cannot appear in an XML 1.0 document.
func (n *Node) AddChild(child *Node) error {
	if child == nil || child.el == nil {
		return ErrNilChild
	}
	if !validText(child.el.Text()) {
		return fmt.Errorf("%w: element %s", ErrInvalidContent, child.el.Tag)
	}

	n.el.AddChild(child.el)

	return nil
}

// Element exposes the underlying etree element.
func (n *Node) Element() *etree.Element {
	return n.el
}

// Document wraps an XML document with the standard declaration.
type Document struct {
	doc *etree.Document
}

// NewDocument returns an empty XML 1.0 document.
func NewDocument() *Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	return &Document{doc: doc}
}

// AddComment appends a comment at document level. Comments added
// before SetRoot end up before the root element.
func (d *Document) AddComment(text string) {
	d.doc.CreateComment(text)
}

// SetRoot sets the root element of the document.
func (d *Document) SetRoot(n *Node) {
	d.doc.SetRoot(n.el)
}

// Serialize returns the document as indented UTF-8 text.
func (d *Document) Serialize() (string, error) {
	d.doc.Indent(2)

	return d.doc.WriteToString()
}

// validText reports whether s may appear as character data
// in an XML 1.0 document.
func validText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}

	return true
}
