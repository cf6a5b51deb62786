package wire

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrDocument = errors.New("malformed document")

// EncodeXML writes the present fields of rec as child elements of the
// schema root, in schema order, inside the schema namespace. Absent fields
// are skipped unless the schema declares EmitDefault for them.
func EncodeXML(s Schema, rec Record) (data []byte, err error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	root := xml.StartElement{
		Name: xml.Name{Local: s.Root()},
		Attr: []xml.Attr{
			{
				Name:  xml.Name{Local: "xmlns"},
				Value: s.Namespace(),
			},
		},
	}
	err = enc.EncodeToken(root)
	for _, f := range s.fields {
		if err != nil {
			break
		}
		v, present := rec[f.Name]
		if !present && !f.EmitDefault {
			continue
		}
		err = encodeValue(enc, f.Wire, v)
	}
	if err == nil {
		err = enc.EncodeToken(root.End())
	}
	if err == nil {
		err = enc.Flush()
	}
	if err == nil {
		data = buf.Bytes()
	}
	return
}

func encodeValue(enc *xml.Encoder, name string, v Value) (err error) {
	start := xml.StartElement{
		Name: xml.Name{Local: name},
	}
	err = enc.EncodeToken(start)
	if err == nil && v.Text != "" {
		err = enc.EncodeToken(xml.CharData(v.Text))
	}
	for _, n := range v.Nodes {
		if err != nil {
			break
		}
		err = encodeNode(enc, n)
	}
	if err == nil {
		err = enc.EncodeToken(start.End())
	}
	return
}

func encodeNode(enc *xml.Encoder, n Node) (err error) {
	err = encodeValue(enc, n.Name, Value{Text: n.Text, Nodes: n.Nodes})
	return
}

// DecodeXML parses a document produced by EncodeXML (or a compatible
// producer) back into a record. Elements not declared by the schema are
// ignored.
func DecodeXML(s Schema, data []byte) (rec Record, err error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var root xml.StartElement
	root, err = findRoot(dec, s.Root(), s.Namespace())
	var nodes []Node
	if err == nil {
		nodes, err = parseChildren(dec, root)
	}
	if err == nil {
		rec = Record{}
		for _, n := range nodes {
			f, found := s.FieldByWire(n.Name)
			if !found {
				continue
			}
			rec[f.Name] = Value{Text: n.Text, Nodes: n.Nodes}
		}
	}
	return
}

func findRoot(dec *xml.Decoder, rootName, ns string) (root xml.StartElement, err error) {
	for {
		var tok xml.Token
		tok, err = dec.Token()
		if err == io.EOF {
			err = fmt.Errorf("%w: root element %s not found", ErrDocument, rootName)
		}
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != rootName {
			err = fmt.Errorf("%w: unexpected root element %s, want %s", ErrDocument, start.Name.Local, rootName)
			break
		}
		if start.Name.Space != ns {
			err = fmt.Errorf("%w: unexpected namespace %s, want %s", ErrDocument, start.Name.Space, ns)
			break
		}
		root = start
		break
	}
	return
}

// parseChildren consumes tokens until the end of start, returning the
// child element trees. Whitespace between elements is dropped.
func parseChildren(dec *xml.Decoder, start xml.StartElement) (nodes []Node, err error) {
	for {
		var tok xml.Token
		tok, err = dec.Token()
		if err != nil {
			break
		}
		var done bool
		switch t := tok.(type) {
		case xml.StartElement:
			var child Node
			child, err = parseNode(dec, t)
			if err == nil {
				nodes = append(nodes, child)
			}
		case xml.EndElement:
			done = true
		}
		if err != nil || done {
			break
		}
	}
	return
}

func parseNode(dec *xml.Decoder, start xml.StartElement) (n Node, err error) {
	n.Name = start.Name.Local
	var text strings.Builder
	for {
		var tok xml.Token
		tok, err = dec.Token()
		if err != nil {
			break
		}
		var done bool
		switch t := tok.(type) {
		case xml.StartElement:
			var child Node
			child, err = parseNode(dec, t)
			if err == nil {
				n.Nodes = append(n.Nodes, child)
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			done = true
		}
		if err != nil || done {
			break
		}
	}
	if err == nil {
		raw := text.String()
		switch {
		case len(n.Nodes) > 0, strings.TrimSpace(raw) == "":
			// indentation noise around child elements
		default:
			n.Text = raw
		}
	}
	return
}
