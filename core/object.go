// Package core implements the minimal PDF object model and content-stream
// tokenizer consumed by the engine package. It is intentionally thin: no
// cross-reference table, no encryption, no file-level parsing — those are
// document-level concerns the engine treats as an external collaborator
// (see the interpreter spec's framing of the tokenizer).
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Object is the tagged-variant interface implemented by every PDF object
// kind the tokenizer can produce: Bool, Integer, Float, String, Name, Array,
// Dictionary, Null.
type Object interface {
	fmt.Stringer
	// WriteString renders the object back to its content-stream form. Used
	// mainly by tests that round-trip operands.
	WriteString() string
}

// Bool is a PDF boolean object.
type Bool bool

// String implements Object.
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// WriteString implements Object.
func (b Bool) WriteString() string { return b.String() }

// Integer is a PDF integer object.
type Integer int64

// String implements Object.
func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }

// WriteString implements Object.
func (i Integer) WriteString() string { return i.String() }

// Float is a PDF real-number object.
type Float float64

// String implements Object.
func (f Float) String() string { return strconv.FormatFloat(float64(f), 'f', -1, 64) }

// WriteString implements Object.
func (f Float) WriteString() string { return f.String() }

// GetNumberAsFloat extracts a float64 from any numeric Object (Integer or Float).
func GetNumberAsFloat(obj Object) (float64, error) {
	switch t := obj.(type) {
	case *Float:
		return float64(*t), nil
	case Float:
		return float64(t), nil
	case *Integer:
		return float64(*t), nil
	case Integer:
		return float64(t), nil
	}
	return 0, fmt.Errorf("not a number: %T", obj)
}

// GetNumbersAsFloat converts a slice of numeric Objects to float64s, failing
// on the first non-numeric element.
func GetNumbersAsFloat(objs []Object) ([]float64, error) {
	out := make([]float64, len(objs))
	for i, obj := range objs {
		f, err := GetNumberAsFloat(obj)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// String is a PDF string object — either literal `(...)` or hex `<...>`
// encoded in the source; both decode to the same raw byte sequence, which is
// all the engine needs (text decoding is the font's job, see model.Font).
type String struct {
	bytes []byte
}

// MakeString creates a String object from already-decoded bytes.
func MakeString(s string) *String { return &String{bytes: []byte(s)} }

// MakeStringFromBytes creates a String object from raw bytes.
func MakeStringFromBytes(b []byte) *String { return &String{bytes: append([]byte(nil), b...)} }

// Bytes returns the string's raw decoded bytes.
func (s *String) Bytes() []byte { return s.bytes }

// Str returns the string's raw bytes reinterpreted as a Go string.
func (s *String) Str() string { return string(s.bytes) }

// String implements Object.
func (s *String) String() string { return s.Str() }

// WriteString implements Object.
func (s *String) WriteString() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, c := range s.bytes {
		switch c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
	return b.String()
}

// GetStringBytes extracts the raw bytes of a String object.
func GetStringBytes(obj Object) ([]byte, bool) {
	switch t := obj.(type) {
	case *String:
		return t.Bytes(), true
	}
	return nil, false
}

// Name is a PDF name object, e.g. `/F1`.
type Name string

// MakeName creates a Name object.
func MakeName(s string) *Name { nm := Name(s); return &nm }

// String implements Object.
func (n Name) String() string { return string(n) }

// WriteString implements Object.
func (n Name) WriteString() string { return "/" + string(n) }

// GetName extracts a *Name from an Object.
func GetName(obj Object) (*Name, bool) {
	switch t := obj.(type) {
	case *Name:
		return t, true
	case Name:
		return &t, true
	}
	return nil, false
}

// GetNameVal extracts the string value of a Name Object.
func GetNameVal(obj Object) (string, bool) {
	n, ok := GetName(obj)
	if !ok {
		return "", false
	}
	return string(*n), true
}

// Array is a PDF array object.
type Array struct {
	elements []Object
}

// MakeArray creates an Array from the given elements.
func MakeArray(objects ...Object) *Array {
	return &Array{elements: objects}
}

// Append adds an element to the array.
func (a *Array) Append(obj Object) { a.elements = append(a.elements, obj) }

// Elements returns the array's elements.
func (a *Array) Elements() []Object { return a.elements }

// Len returns the number of elements in the array.
func (a *Array) Len() int { return len(a.elements) }

// String implements Object.
func (a *Array) String() string {
	parts := make([]string, len(a.elements))
	for i, e := range a.elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// WriteString implements Object.
func (a *Array) WriteString() string {
	parts := make([]string, len(a.elements))
	for i, e := range a.elements {
		parts[i] = e.WriteString()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// GetArray extracts a *Array from an Object.
func GetArray(obj Object) (*Array, bool) {
	arr, ok := obj.(*Array)
	return arr, ok
}

// Dictionary is a PDF dictionary object. Keys preserve insertion order for
// deterministic WriteString output.
type Dictionary struct {
	keys   []string
	values map[string]Object
}

// MakeDict creates an empty Dictionary.
func MakeDict() *Dictionary {
	return &Dictionary{values: map[string]Object{}}
}

// Set sets key `k` to value `v`, preserving first-insertion key order.
func (d *Dictionary) Set(k string, v Object) {
	if _, exists := d.values[k]; !exists {
		d.keys = append(d.keys, k)
	}
	d.values[k] = v
}

// Get returns the value for `k`, or nil, false if absent.
func (d *Dictionary) Get(k string) (Object, bool) {
	v, ok := d.values[k]
	return v, ok
}

// Keys returns the dictionary's keys in insertion order.
func (d *Dictionary) Keys() []string { return d.keys }

// String implements Object.
func (d *Dictionary) String() string { return d.render(Object.String) }

// WriteString implements Object.
func (d *Dictionary) WriteString() string { return d.render(Object.WriteString) }

func (d *Dictionary) render(f func(Object) string) string {
	var b strings.Builder
	b.WriteString("<<")
	for _, k := range d.keys {
		b.WriteString("/" + k + " ")
		b.WriteString(f(d.values[k]))
		b.WriteString(" ")
	}
	b.WriteString(">>")
	return b.String()
}

// Null is a PDF null object.
type Null struct{}

// MakeNull creates a Null object.
func MakeNull() *Null { return &Null{} }

// String implements Object.
func (Null) String() string { return "null" }

// WriteString implements Object.
func (Null) WriteString() string { return "null" }

// Reference is an indirect object reference, `N G R`. The engine never
// resolves these itself — resolution is the document model's job. The
// tokenizer never produces Reference values either: inside an array, `N G R`
// comes out as two Integers followed by a String holding "R".
type Reference struct {
	ObjectNumber     int64
	GenerationNumber int64
}

// String implements Object.
func (r Reference) String() string {
	return fmt.Sprintf("%d %d R", r.ObjectNumber, r.GenerationNumber)
}

// WriteString implements Object.
func (r Reference) WriteString() string { return r.String() }
