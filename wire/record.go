package wire

// Node is a generic named element: leaf text or a list of child elements.
type Node struct {
	Name  string
	Text  string
	Nodes []Node
}

// Value is the content of a single schema field: leaf text or a nested
// element tree. The element name comes from the schema, not the value.
type Value struct {
	Text  string
	Nodes []Node
}

// Record holds the present fields of a document keyed by logical field
// name. A missing key means the field is absent.
type Record map[string]Value

func (n Node) Child(name string) (c Node, found bool) {
	for _, child := range n.Nodes {
		if child.Name == name {
			c, found = child, true
			break
		}
	}
	return
}

func (n Node) ChildText(name string) (text string) {
	c, found := n.Child(name)
	if found {
		text = c.Text
	}
	return
}

func (n Node) Children(name string) (cc []Node) {
	for _, child := range n.Nodes {
		if child.Name == name {
			cc = append(cc, child)
		}
	}
	return
}

func (v Value) Children(name string) (cc []Node) {
	for _, child := range v.Nodes {
		if child.Name == name {
			cc = append(cc, child)
		}
	}
	return
}
