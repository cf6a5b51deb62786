package wire

import (
	"fmt"
	"github.com/bytedance/sonic"
)

// EncodeJSON renders the record as a JSON object keyed by wire names.
// Nested element trees become objects, repeated child names become arrays.
// JSON objects carry no element order, so the schema order keys only apply
// to the XML rendition.
func EncodeJSON(s Schema, rec Record) (data []byte, err error) {
	m := make(map[string]any, len(rec))
	for _, f := range s.fields {
		v, present := rec[f.Name]
		if !present && !f.EmitDefault {
			continue
		}
		m[f.Wire] = valueToAny(v)
	}
	data, err = sonic.Marshal(m)
	return
}

func DecodeJSON(s Schema, data []byte) (rec Record, err error) {
	var m map[string]any
	err = sonic.Unmarshal(data, &m)
	if err == nil {
		rec = Record{}
		for wireName, raw := range m {
			f, found := s.FieldByWire(wireName)
			if !found {
				continue
			}
			rec[f.Name] = anyToValue(raw)
		}
	}
	return
}

func valueToAny(v Value) (out any) {
	switch {
	case len(v.Nodes) == 0:
		out = v.Text
	default:
		out = nodesToAny(v.Nodes)
	}
	return
}

func nodesToAny(nodes []Node) (out map[string]any) {
	counts := make(map[string]int, len(nodes))
	for _, n := range nodes {
		counts[n.Name]++
	}
	out = make(map[string]any, len(counts))
	for _, n := range nodes {
		var child any
		switch {
		case len(n.Nodes) == 0:
			child = n.Text
		default:
			child = nodesToAny(n.Nodes)
		}
		switch {
		case counts[n.Name] > 1:
			arr, _ := out[n.Name].([]any)
			out[n.Name] = append(arr, child)
		default:
			out[n.Name] = child
		}
	}
	return
}

func anyToValue(raw any) (v Value) {
	switch t := raw.(type) {
	case map[string]any:
		v.Nodes = anyToNodes(t)
	case nil:
	default:
		v.Text = scalarText(t)
	}
	return
}

func anyToNodes(m map[string]any) (nodes []Node) {
	for name, raw := range m {
		switch t := raw.(type) {
		case []any:
			for _, item := range t {
				nodes = append(nodes, anyToNode(name, item))
			}
		default:
			nodes = append(nodes, anyToNode(name, raw))
		}
	}
	return
}

func anyToNode(name string, raw any) (n Node) {
	n.Name = name
	switch t := raw.(type) {
	case map[string]any:
		n.Nodes = anyToNodes(t)
	case nil:
	default:
		n.Text = scalarText(t)
	}
	return
}

func scalarText(raw any) (text string) {
	switch t := raw.(type) {
	case string:
		text = t
	case float64:
		switch {
		case t == float64(int64(t)):
			text = fmt.Sprintf("%d", int64(t))
		default:
			text = fmt.Sprintf("%g", t)
		}
	default:
		text = fmt.Sprintf("%v", t)
	}
	return
}
