package avro

import (
	"bytes"
	"fmt"
	"io"
)

// Encoder drives a single encode call (spec §3.4, "Encoder State"). It holds
// the byte sink, the compiled schema's ref table, a mutable schema cursor,
// a reusable varint scratch buffer, and the StringChecker-mode fields below
// — no path stack, since path decoration is built up by
// each composite's withPath call as errors unwind rather than carried
// forward on the way in. An Encoder instance is owned by exactly one
// CompiledSchema.Write call and never escapes it (spec §5).
type Encoder struct {
	w       io.Writer
	refs    []SSchema
	cursor  SSchema
	scratch []byte

	// stringCheckOnly puts this Encoder in StringChecker mode (spec §4.5):
	// no sink or cursor is set, and only String succeeds.
	stringCheckOnly bool
	checkedString   string
}

// Write streams the Avro binary encoding of v against c into w (spec §6.1).
func (c *CompiledSchema) Write(v Value, w io.Writer) error {
	e := &Encoder{w: w, refs: c.refs, cursor: c.root}
	return v.EncodeAvro(e)
}

// Serialize encodes v against c into an in-memory buffer (spec §6.1).
func (c *CompiledSchema) Serialize(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Write(v, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// checkNotKeyMode rejects every event but String while the Encoder is in
// StringChecker mode (spec §4.5).
func (e *Encoder) checkNotKeyMode() error {
	if e.stringCheckOnly {
		return customf("map key must be a string")
	}
	return nil
}

// normalize implements spec §4.2's cursor normalization: follow Ref chains
// to their target, then fail if the resulting cursor is an ambiguous union.
func (e *Encoder) normalize() (SSchema, error) {
	s := e.cursor
	for {
		ref, ok := s.(*RefSSchema)
		if !ok {
			break
		}
		s = e.refs[ref.Index]
	}
	if u, ok := s.(*UnionSSchema); ok && u.Ambiguous() {
		return nil, customf("ambiguous union: two or more variants share a kind, cannot dispatch without a secondary key")
	}
	return s, nil
}

// Schema returns the SSchema the cursor currently resolves to: Ref chains
// are followed, but no union variant is committed and no byte is written.
// The core protocol methods never call this — a Value is meant to drive
// the encoder blind, per spec §6.2 — but an adapter that turns a
// schema-blind Go representation (arbitrary JSON, a reflected struct) into
// Value calls needs some way to resolve a structurally ambiguous shape
// (e.g. deciding whether a JSON object should be driven as a Struct or a
// Map) without guessing. avrogeneric and avroreflect are built on this.
func (e *Encoder) Schema() (SSchema, error) {
	return e.normalize()
}

// resolve normalizes the cursor and matches it against one of kinds, in
// order. A direct kind match returns the cursor itself. A Union cursor is
// dispatched by scanning kinds in order against the union's Dispatch table,
// writing the winning variant index as a varint (spec §4.2, "If the cursor
// is a Union..."). No match is a SchemaMismatch naming kinds[0], mirroring
// the original reference's match_schema! macro (its "found" is also the
// first expected kind in the list, used purely for the error message).
func (e *Encoder) resolve(kinds ...SchemaKind) (SSchema, error) {
	cur, err := e.normalize()
	if err != nil {
		return nil, err
	}
	for _, k := range kinds {
		if cur.Kind() == k {
			return cur, nil
		}
	}
	if u, ok := cur.(*UnionSSchema); ok {
		for _, k := range kinds {
			if idx, ok := u.Dispatch[k]; ok {
				if err := e.writeVarint(int64(idx)); err != nil {
					return nil, err
				}
				return u.Variants[idx], nil
			}
		}
	}
	return nil, &MismatchError{Expected: cur, Found: kinds[0]}
}

// Bool announces a boolean scalar (spec §6.2 "scalar(kind,v)" row).
func (e *Encoder) Bool(v bool) error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	if _, err := e.resolve(KindBoolean); err != nil {
		return err
	}
	return e.writeBool(v)
}

// Int announces a scalar of integer width ≤32 bits, matching an Int or a
// Long cursor (spec §4.2, "Numeric event of integer width ≤ 32 bits..."),
// or either of the two Int-width logical leaves, Date and TimeMillis,
// which are written as their underlying Int (spec §4.2, "Logical
// timestamp/date/time types are written as their underlying Int or Long").
func (e *Encoder) Int(v int32) error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	if _, err := e.resolve(KindInt, KindLong, KindDate, KindTimeMillis); err != nil {
		return err
	}
	return e.writeVarint(int64(v))
}

// Long announces a 64-bit integer scalar, matching a Long cursor, or any of
// the three Long-width logical leaves (TimeMicros, TimestampMillis,
// TimestampMicros), written as their underlying Long.
func (e *Encoder) Long(v int64) error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	if _, err := e.resolve(KindLong, KindTimeMicros, KindTimestampMillis, KindTimestampMicros); err != nil {
		return err
	}
	return e.writeVarint(v)
}

// Float announces a 32-bit floating scalar.
func (e *Encoder) Float(v float32) error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	if _, err := e.resolve(KindFloat); err != nil {
		return err
	}
	return e.writeFloat32(v)
}

// Double announces a 64-bit floating scalar.
func (e *Encoder) Double(v float64) error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	if _, err := e.resolve(KindDouble); err != nil {
		return err
	}
	return e.writeFloat64(v)
}

// String announces a text scalar, matching String, Uuid (textual form
// framed as String, spec §4.2), or Enum (looked up in the symbol table and
// written as an ordinal varint). In StringChecker mode this only records
// the value for the caller to read back.
func (e *Encoder) String(v string) error {
	if e.stringCheckOnly {
		e.checkedString = v
		return nil
	}
	target, err := e.resolve(KindString, KindUuid, KindEnum)
	if err != nil {
		return err
	}
	if enum, ok := target.(*EnumSSchema); ok {
		idx, ok := enum.Ordinals[v]
		if !ok {
			return customf("unexpected %s in enum", v)
		}
		return e.writeVarint(int64(idx))
	}
	return e.writeFramedBytes([]byte(v))
}

// Bytes announces a byte-string scalar, matching Bytes/Uuid (framed),
// Fixed (unframed, size-checked), or Decimal (delegates to its inner
// schema).
func (e *Encoder) Bytes(v []byte) error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	target, err := e.resolve(KindBytes, KindUuid, KindFixed, KindDecimal)
	if err != nil {
		return err
	}
	return e.writeBytesLike(target, v)
}

// Null announces a none/unit event: nothing is written on the wire.
func (e *Encoder) Null() error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	_, err := e.resolve(KindNull)
	return err
}

// Some announces an optional-present event; it delegates straight through
// to inner, letting the cursor's own Union dispatch (if any) pick the
// present branch (spec §6.2, "some(inner) ... delegate").
func (e *Encoder) Some(inner Value) error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	return inner.EncodeAvro(e)
}

// UnitVariant announces a tagless sum-type case: its name is encoded as a
// String or Enum scalar, with the enclosing type name decorating any error
// path (spec §6.2 "unit-variant").
func (e *Encoder) UnitVariant(typeName, variant string) error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	return withPath(e.String(variant), typeName, variant)
}

// NewtypeStruct announces a single-field wrapper type: it delegates to
// inner's own encode, decorating any error with the wrapper's name.
func (e *Encoder) NewtypeStruct(name string, inner Value) error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	err := inner.EncodeAvro(e)
	return withPath(err, name, "")
}

// NewtypeVariant announces a sum-type case carrying one payload value. The
// cursor must be a tag-envelope Record (spec §4.3); variant is written into
// its first field and inner is encoded against its second.
func (e *Encoder) NewtypeVariant(typeName, variant string, inner Value) error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	target, err := e.resolve(KindRecord)
	if err != nil {
		return err
	}
	rec := target.(*RecordSSchema)
	payloadSchema, err := e.writeTag(rec, variant)
	if err != nil {
		return withPath(err, typeName, variant)
	}
	saved := e.cursor
	e.cursor = payloadSchema
	err = inner.EncodeAvro(e)
	e.cursor = saved
	return withPath(err, typeName, variant)
}

// Seq announces an array/tuple of declared length: length < 0 means the
// producer could not declare a length up front, a usage error (spec §4.2,
// "A producer that cannot declare length in advance is a usage error").
func (e *Encoder) Seq(length int, f func(s *SeqEncoder) error) error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	if length < 0 {
		return customf("array/map without len")
	}
	target, err := e.resolve(KindArray)
	if err != nil {
		return err
	}
	arr := target.(*ArraySSchema)
	if err := e.writeLength(length); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}
	saved := e.cursor
	e.cursor = arr.Elem
	err = f(&SeqEncoder{e: e})
	e.cursor = saved
	if err != nil {
		return err
	}
	return e.write([]byte{0})
}

// Map announces a map of declared length; see Seq for the length < 0 usage
// error and the shared blocked-framing shape (spec §4.2).
func (e *Encoder) Map(length int, f func(m *MapEncoder) error) error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	if length < 0 {
		return customf("array/map without len")
	}
	target, err := e.resolve(KindMap)
	if err != nil {
		return err
	}
	m := target.(*MapSSchema)
	if err := e.writeLength(length); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}
	err = f(&MapEncoder{e: e, valueSchema: m.Value})
	if err != nil {
		return err
	}
	return e.write([]byte{0})
}

// Struct announces a record. Fields must be supplied through the returned
// StructEncoder in declared schema order (spec §4.2, "Records").
func (e *Encoder) Struct(name string, f func(s *StructEncoder) error) error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	target, err := e.resolve(KindRecord)
	if err != nil {
		return err
	}
	rec := target.(*RecordSSchema)
	se := &StructEncoder{e: e, typeName: name, fields: rec.Fields}
	if err := f(se); err != nil {
		return err
	}
	if len(se.fields) != 0 {
		return &CustomError{Message: fmt.Sprintf("missing field %s", se.fields[0].Name), Path: []string{name}}
	}
	return nil
}

// StructVariant announces a sum-type case carrying named fields: a tag
// envelope (spec §4.3) wrapping a nested Record.
func (e *Encoder) StructVariant(typeName, variant string, f func(s *StructEncoder) error) error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	target, err := e.resolve(KindRecord)
	if err != nil {
		return err
	}
	rec := target.(*RecordSSchema)
	payloadSchema, err := e.writeTag(rec, variant)
	if err != nil {
		return withPath(err, typeName, variant)
	}
	payloadRec, ok := payloadSchema.(*RecordSSchema)
	if !ok {
		return withPath(customf("expected record payload for variant %s", variant), typeName, variant)
	}
	se := &StructEncoder{e: e, typeName: typeName, fields: payloadRec.Fields}
	err = f(se)
	if err == nil && len(se.fields) != 0 {
		err = customf("missing field %s", se.fields[0].Name)
	}
	return withPath(err, typeName, variant)
}

// TupleVariant announces a sum-type case carrying positional elements: a tag
// envelope (spec §4.3) wrapping a nested Array.
func (e *Encoder) TupleVariant(typeName, variant string, length int, f func(s *SeqEncoder) error) error {
	if err := e.checkNotKeyMode(); err != nil {
		return err
	}
	target, err := e.resolve(KindRecord)
	if err != nil {
		return err
	}
	rec := target.(*RecordSSchema)
	payloadSchema, err := e.writeTag(rec, variant)
	if err != nil {
		return withPath(err, typeName, variant)
	}
	arr, ok := payloadSchema.(*ArraySSchema)
	if !ok {
		return withPath(customf("expected array payload for variant %s", variant), typeName, variant)
	}
	if length < 0 {
		return withPath(customf("array/map without len"), typeName, variant)
	}
	if err := e.writeLength(length); err != nil {
		return err
	}
	if length > 0 {
		saved := e.cursor
		e.cursor = arr.Elem
		err = f(&SeqEncoder{e: e})
		e.cursor = saved
		if err != nil {
			return withPath(err, typeName, variant)
		}
		if err := e.write([]byte{0}); err != nil {
			return err
		}
	}
	return nil
}
