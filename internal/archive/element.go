// Package archive builds, writes and reads the gzip-wrapped XML program
// archive (.urp) used by the controller.
//
// Element trees are written by Marshal in the exact layout the controller
// software produces: two-space indentation, self-closing empty elements
// without a space before "/>", attributes in insertion order and no XML
// declaration. Consumers of the format read it positionally, so the layout
// is part of the contract.
package archive

// Attr is one attribute. Attributes keep their insertion order.
type Attr struct {
	Name  string
	Value string
}

// A builds an Attr.
func A(name, value string) Attr { return Attr{Name: name, Value: value} }

// Element is a node of the archive tree.
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// NewElement creates a detached element.
func NewElement(name string, attrs ...Attr) *Element {
	return &Element{Name: name, Attrs: attrs}
}

// Add appends a new child element and returns it.
func (e *Element) Add(name string, attrs ...Attr) *Element {
	child := NewElement(name, attrs...)
	e.Children = append(e.Children, child)
	return child
}

// Set adds an attribute, or replaces the value of an existing one.
func (e *Element) Set(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// Attr returns the value of an attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}
