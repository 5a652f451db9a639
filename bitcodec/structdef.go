package bitcodec

import "fmt"

// StructDef is an ordered, immutable sequence of field descriptors compiled
// once into a pack/unpack plan: a total bit width (0-contributing for any
// variable-length descriptor) and a defaults map for fields absent from a
// message at encode time.
type StructDef struct {
	Fields      []Field
	totalBits   int
	hasVariable bool
}

// Compile builds a StructDef from an ordered field list.
func Compile(fields ...Field) *StructDef {
	total := 0
	hasVar := false
	for _, f := range fields {
		if f.IsVariable() {
			hasVar = true
		}
		total += f.Bits
	}
	return &StructDef{Fields: fields, totalBits: total, hasVariable: hasVar}
}

// TotalBits returns the sum of the struct's fixed field widths. A struct
// with a variable-length field reports only the width of its fixed prefix;
// callers size the buffer for such a struct themselves.
func (s *StructDef) TotalBits() int { return s.totalBits }

// HasVariableField reports whether any of the struct's fields is variable-length.
func (s *StructDef) HasVariableField() bool { return s.hasVariable }

// Defaults returns a fresh map of each field's default value, keyed by name.
func (s *StructDef) Defaults() map[string]interface{} {
	out := make(map[string]interface{}, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Name] = f.Default
	}
	return out
}

// Unpack reads fields in order starting at buf's cursor, merging their
// decoded values into msg, and advances the cursor by the struct's width.
func (s *StructDef) Unpack(buf *BitBuffer, msg map[string]interface{}) error {
	for _, f := range s.Fields {
		v, n, err := f.decodeAt(buf, buf.cursor)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		msg[f.Name] = v
		buf.cursor += n
	}
	return nil
}

// Pack writes fields in order starting at buf's cursor, taking each value
// from msg (falling back to the field's default when absent), and advances
// the cursor by the struct's width.
func (s *StructDef) Pack(buf *BitBuffer, msg map[string]interface{}) error {
	for _, f := range s.Fields {
		v, err := f.encodeAt(buf, buf.cursor, msg[f.Name])
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		buf.cursor += v
	}
	return nil
}

// UnpackFrom reads fields in order starting at the absolute bit offset,
// without moving buf's cursor, and returns the number of bits consumed.
func (s *StructDef) UnpackFrom(buf *BitBuffer, offset int, msg map[string]interface{}) (int, error) {
	cursor := offset
	for _, f := range s.Fields {
		v, n, err := f.decodeAt(buf, cursor)
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", f.Name, err)
		}
		msg[f.Name] = v
		cursor += n
	}
	return cursor - offset, nil
}

// PackInto writes fields in order starting at the absolute bit offset,
// without moving buf's cursor, and returns the number of bits written.
func (s *StructDef) PackInto(buf *BitBuffer, offset int, msg map[string]interface{}) (int, error) {
	cursor := offset
	for _, f := range s.Fields {
		n, err := f.encodeAt(buf, cursor, msg[f.Name])
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", f.Name, err)
		}
		cursor += n
	}
	return cursor - offset, nil
}
