package avro

// Value is the producer-protocol contract a user value must satisfy to be
// encoded (spec §6.2). A Value drives its own traversal by calling back into
// the Encoder it is handed, announcing one structural event at a time in the
// order spec §6.2's event table specifies; it never inspects the schema
// itself. This is the Go rendering spec §9 sanctions in place of serde's
// double-dispatch Serializer trait.
type Value interface {
	// EncodeAvro drives e with this value's structural events.
	EncodeAvro(e *Encoder) error
}

// SeqEncoder is the scoped sub-encoder an Encoder.Seq/TupleVariant callback
// receives, corresponding to Rust's CollectionSerializer (spec §4.2,
// "Arrays and Maps").
type SeqEncoder struct {
	e *Encoder
}

// Element encodes one array/tuple element against the array's element
// schema, in producer order.
func (s *SeqEncoder) Element(v Value) error {
	return v.EncodeAvro(s.e)
}

// MapEncoder is the scoped sub-encoder an Encoder.Map callback receives
// (spec §4.2, "Arrays and Maps"; §4.5, StringChecker).
type MapEncoder struct {
	e           *Encoder
	valueSchema SSchema
}

// Entry writes one map entry: key is validated as string-shaped via the
// one-shot StringChecker (spec §4.5) and written directly as a framed Avro
// string; value is then encoded against the map's value schema.
func (m *MapEncoder) Entry(key Value, value Value) error {
	checker := newStringCheckEncoder()
	if err := key.EncodeAvro(checker); err != nil {
		return err
	}
	if err := m.e.writeFramedBytes([]byte(checker.checkedString)); err != nil {
		return err
	}
	saved := m.e.cursor
	m.e.cursor = m.valueSchema
	err := value.EncodeAvro(m.e)
	m.e.cursor = saved
	return err
}

// StringKey adapts a plain Go string to a Value so it can be passed directly
// as a MapEncoder.Entry key without a caller writing its own Value wrapper.
type StringKey string

// EncodeAvro announces this key as a single string scalar event.
func (k StringKey) EncodeAvro(e *Encoder) error { return e.String(string(k)) }

// StructEncoder is the scoped sub-encoder an Encoder.Struct/StructVariant
// callback receives, corresponding to Rust's RecordSerializer (spec §4.2,
// "Records").
type StructEncoder struct {
	e        *Encoder
	typeName string
	fields   []RecordField
}

// Field encodes one record field positionally: name must match the next
// remaining schema field exactly (spec §4.2 step 2, "order-strict").
func (s *StructEncoder) Field(name string, v Value) error {
	if len(s.fields) == 0 {
		return withPath(customf("unexpected field"), s.typeName, name)
	}
	if name != s.fields[0].Name {
		return withPath(customf("expected field %s", s.fields[0].Name), s.typeName, name)
	}
	saved := s.e.cursor
	s.e.cursor = s.fields[0].Schema
	err := v.EncodeAvro(s.e)
	s.e.cursor = saved
	s.fields = s.fields[1:]
	return withPath(err, s.typeName, name)
}
