package snapshot

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// MarshalJSON renders the tree as a JSON object with fields in insertion
// order.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *Tree) appendJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i := range t.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(t.fields[i].Name)
		if err != nil {
			return err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if err := t.fields[i].Item.appendJSON(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// MarshalJSON renders a single item.
func (it Item) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := it.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (it Item) appendJSON(buf *bytes.Buffer) error {
	switch it.kind {
	case KindInt:
		buf.WriteString(strconv.FormatInt(it.i, 10))
	case KindUint:
		buf.WriteString(strconv.FormatUint(it.u, 10))
	case KindFloat:
		// JSON cannot represent NaN or infinities
		if math.IsNaN(it.f) || math.IsInf(it.f, 0) {
			buf.WriteString("null")
			return nil
		}
		buf.WriteString(strconv.FormatFloat(it.f, 'g', -1, 64))
	case KindBool:
		buf.WriteString(strconv.FormatBool(it.b))
	case KindText:
		escaped, err := json.Marshal(it.s)
		if err != nil {
			return err
		}
		buf.Write(escaped)
	case KindTree:
		if it.t == nil {
			buf.WriteString("{}")
			return nil
		}
		return it.t.appendJSON(buf)
	default:
		buf.WriteString("null")
	}
	return nil
}
