package snapshot

// Kind identifies what a tree item holds.
type Kind uint8

const (
	KindInt Kind = iota
	KindUint
	KindFloat
	KindBool
	KindText
	KindTree
)

// String returns the kind name for logging and display.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	case KindTree:
		return "tree"
	default:
		return "unknown"
	}
}

// Item is one snapshot value: a scalar leaf or a nested tree.
type Item struct {
	kind Kind
	i    int64
	u    uint64
	f    float64
	b    bool
	s    string
	t    *Tree
}

// Int builds an integer leaf.
func Int(v int64) Item { return Item{kind: KindInt, i: v} }

// Uint builds an unsigned integer leaf.
func Uint(v uint64) Item { return Item{kind: KindUint, u: v} }

// Float builds a float leaf.
func Float(v float64) Item { return Item{kind: KindFloat, f: v} }

// Bool builds a boolean leaf.
func Bool(v bool) Item { return Item{kind: KindBool, b: v} }

// Text builds a text leaf.
func Text(v string) Item { return Item{kind: KindText, s: v} }

// Subtree wraps a nested tree as an item.
func Subtree(t *Tree) Item { return Item{kind: KindTree, t: t} }

// Kind returns what the item holds.
func (it Item) Kind() Kind { return it.kind }

// AsInt returns the integer leaf value.
func (it Item) AsInt() (int64, bool) {
	if it.kind != KindInt {
		return 0, false
	}
	return it.i, true
}

// AsUint returns the unsigned integer leaf value.
func (it Item) AsUint() (uint64, bool) {
	if it.kind != KindUint {
		return 0, false
	}
	return it.u, true
}

// AsFloat returns the float leaf value.
func (it Item) AsFloat() (float64, bool) {
	if it.kind != KindFloat {
		return 0, false
	}
	return it.f, true
}

// AsBool returns the boolean leaf value.
func (it Item) AsBool() (bool, bool) {
	if it.kind != KindBool {
		return false, false
	}
	return it.b, true
}

// AsText returns the text leaf value.
func (it Item) AsText() (string, bool) {
	if it.kind != KindText {
		return "", false
	}
	return it.s, true
}

// AsTree returns the nested tree.
func (it Item) AsTree() (*Tree, bool) {
	if it.kind != KindTree {
		return nil, false
	}
	return it.t, true
}

// Number returns any numeric leaf widened to a float, which is what exporters
// that only speak floats consume.
func (it Item) Number() (float64, bool) {
	switch it.kind {
	case KindInt:
		return float64(it.i), true
	case KindUint:
		return float64(it.u), true
	case KindFloat:
		return it.f, true
	case KindBool:
		if it.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Field is one named entry in a tree.
type Field struct {
	Name string
	Item Item
}

// Tree is an insertion-ordered collection of named fields. The zero Tree is
// empty and ready to use, but most callers go through NewTree for symmetry
// with nested construction.
type Tree struct {
	fields []Field
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Len returns the number of fields.
func (t *Tree) Len() int {
	return len(t.fields)
}

// Fields returns the fields in insertion order. The slice is shared with the
// tree; callers must not modify it.
func (t *Tree) Fields() []Field {
	return t.fields
}

// Set stores an item under name. An existing name is replaced in place, so
// field order never changes once established.
func (t *Tree) Set(name string, item Item) {
	for i := range t.fields {
		if t.fields[i].Name == name {
			t.fields[i].Item = item
			return
		}
	}
	t.fields = append(t.fields, Field{Name: name, Item: item})
}

// SetInt stores an integer leaf under name.
func (t *Tree) SetInt(name string, v int64) { t.Set(name, Int(v)) }

// SetUint stores an unsigned integer leaf under name.
func (t *Tree) SetUint(name string, v uint64) { t.Set(name, Uint(v)) }

// SetFloat stores a float leaf under name.
func (t *Tree) SetFloat(name string, v float64) { t.Set(name, Float(v)) }

// SetBool stores a boolean leaf under name.
func (t *Tree) SetBool(name string, v bool) { t.Set(name, Bool(v)) }

// SetText stores a text leaf under name.
func (t *Tree) SetText(name string, v string) { t.Set(name, Text(v)) }

// SetTree nests a subtree under name.
func (t *Tree) SetTree(name string, sub *Tree) { t.Set(name, Subtree(sub)) }

// Get returns the item stored under name in this tree.
func (t *Tree) Get(name string) (Item, bool) {
	for i := range t.fields {
		if t.fields[i].Name == name {
			return t.fields[i].Item, true
		}
	}
	return Item{}, false
}

// At walks nested trees along path and returns the item at the end. An empty
// path returns the tree itself as an item.
func (t *Tree) At(path ...string) (Item, bool) {
	if len(path) == 0 {
		return Subtree(t), true
	}
	current := t
	for _, name := range path[:len(path)-1] {
		item, ok := current.Get(name)
		if !ok {
			return Item{}, false
		}
		sub, ok := item.AsTree()
		if !ok {
			return Item{}, false
		}
		current = sub
	}
	return current.Get(path[len(path)-1])
}
