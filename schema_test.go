package avro

import "testing"

func primitiveSchemaAssert(t *testing.T, raw string, expected SchemaType) {
	t.Helper()
	s, err := ParseSchema(raw)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", raw, err)
	}
	if s.Type() != expected {
		t.Fatalf("%s: got Type() = %s, want %s", raw, s.Type(), expected)
	}
}

func TestPrimitiveSchema(t *testing.T) {
	primitiveSchemaAssert(t, `"string"`, String)
	primitiveSchemaAssert(t, `"int"`, Int)
	primitiveSchemaAssert(t, `"long"`, Long)
	primitiveSchemaAssert(t, `"boolean"`, Boolean)
	primitiveSchemaAssert(t, `"float"`, Float)
	primitiveSchemaAssert(t, `"double"`, Double)
	primitiveSchemaAssert(t, `"bytes"`, Bytes)
	primitiveSchemaAssert(t, `"null"`, Null)
}

func TestLogicalTypeSchema(t *testing.T) {
	primitiveSchemaAssert(t, `{"type":"string","logicalType":"uuid"}`, Uuid)
	primitiveSchemaAssert(t, `{"type":"int","logicalType":"date"}`, Date)
	primitiveSchemaAssert(t, `{"type":"int","logicalType":"time-millis"}`, TimeMillis)
	primitiveSchemaAssert(t, `{"type":"long","logicalType":"time-micros"}`, TimeMicros)
	primitiveSchemaAssert(t, `{"type":"long","logicalType":"timestamp-millis"}`, TimestampMillis)
	primitiveSchemaAssert(t, `{"type":"long","logicalType":"timestamp-micros"}`, TimestampMicros)
}

func TestArraySchema(t *testing.T) {
	s, err := ParseSchema(`{"type":"array","items":"string"}`)
	if err != nil {
		t.Fatal(err)
	}
	arr, ok := s.(*ArraySchema)
	if !ok {
		t.Fatalf("got %T, want *ArraySchema", s)
	}
	if arr.Items.Type() != String {
		t.Fatalf("items type = %s, want string", arr.Items.Type())
	}

	nested, err := ParseSchema(`{"type":"array","items":{"type":"array","items":"long"}}`)
	if err != nil {
		t.Fatal(err)
	}
	inner := nested.(*ArraySchema).Items.(*ArraySchema)
	if inner.Items.Type() != Long {
		t.Fatalf("nested items type = %s, want long", inner.Items.Type())
	}
}

func TestMapSchema(t *testing.T) {
	s, err := ParseSchema(`{"type":"map","values":"int"}`)
	if err != nil {
		t.Fatal(err)
	}
	m, ok := s.(*MapSchema)
	if !ok {
		t.Fatalf("got %T, want *MapSchema", s)
	}
	if m.Values.Type() != Int {
		t.Fatalf("values type = %s, want int", m.Values.Type())
	}
}

func TestRecordSchema(t *testing.T) {
	raw := `{
		"type": "record",
		"name": "Foo",
		"namespace": "org.example",
		"fields": [
			{"name": "bar", "type": "string"},
			{"name": "baz", "type": ["null", "int"]}
		]
	}`
	s, err := ParseSchema(raw)
	if err != nil {
		t.Fatal(err)
	}
	rec, ok := s.(*RecordSchema)
	if !ok {
		t.Fatalf("got %T, want *RecordSchema", s)
	}
	if rec.Name != "Foo" || rec.Namespace != "org.example" {
		t.Fatalf("got name=%q namespace=%q", rec.Name, rec.Namespace)
	}
	if len(rec.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(rec.Fields))
	}
	if rec.Fields[0].Name != "bar" || rec.Fields[0].Type.Type() != String {
		t.Fatalf("field 0 = %+v", rec.Fields[0])
	}
	if rec.Fields[1].Type.Type() != Union {
		t.Fatalf("field 1 type = %s, want union", rec.Fields[1].Type.Type())
	}
}

func TestEnumSchema(t *testing.T) {
	s, err := ParseSchema(`{"type":"enum","name":"Suit","symbols":["SPADES","HEARTS","DIAMONDS","CLUBS"]}`)
	if err != nil {
		t.Fatal(err)
	}
	e, ok := s.(*EnumSchema)
	if !ok {
		t.Fatalf("got %T, want *EnumSchema", s)
	}
	if len(e.Symbols) != 4 || e.Symbols[1] != "HEARTS" {
		t.Fatalf("got symbols %v", e.Symbols)
	}
}

func TestUnionSchema(t *testing.T) {
	s, err := ParseSchema(`["null", "int", "string"]`)
	if err != nil {
		t.Fatal(err)
	}
	u, ok := s.(*UnionSchema)
	if !ok {
		t.Fatalf("got %T, want *UnionSchema", s)
	}
	if len(u.Types) != 3 {
		t.Fatalf("got %d variants, want 3", len(u.Types))
	}
	if u.Types[0].Type() != Null || u.Types[1].Type() != Int || u.Types[2].Type() != String {
		t.Fatalf("unexpected variant types: %v %v %v", u.Types[0].Type(), u.Types[1].Type(), u.Types[2].Type())
	}
}

func TestFixedSchema(t *testing.T) {
	s, err := ParseSchema(`{"type":"fixed","name":"MD5","size":16}`)
	if err != nil {
		t.Fatal(err)
	}
	f, ok := s.(*FixedSchema)
	if !ok {
		t.Fatalf("got %T, want *FixedSchema", s)
	}
	if f.Size != 16 {
		t.Fatalf("got size %d, want 16", f.Size)
	}
}

func TestDecimalSchema(t *testing.T) {
	s, err := ParseSchema(`{"type":"bytes","logicalType":"decimal","precision":9,"scale":2}`)
	if err != nil {
		t.Fatal(err)
	}
	d, ok := s.(*DecimalSchema)
	if !ok {
		t.Fatalf("got %T, want *DecimalSchema", s)
	}
	if d.Precision != 9 || d.Scale != 2 {
		t.Fatalf("got precision=%d scale=%d", d.Precision, d.Scale)
	}
	if d.Inner.Type() != Bytes {
		t.Fatalf("inner type = %s, want bytes", d.Inner.Type())
	}

	fixedDecimal, err := ParseSchema(`{"type":"fixed","name":"Money","size":8,"logicalType":"decimal","precision":12,"scale":4}`)
	if err != nil {
		t.Fatal(err)
	}
	fd, ok := fixedDecimal.(*DecimalSchema)
	if !ok {
		t.Fatalf("got %T, want *DecimalSchema", fixedDecimal)
	}
	if fd.Inner.Type() != Fixed {
		t.Fatalf("inner type = %s, want fixed", fd.Inner.Type())
	}
}

func TestRecursiveSchemaBecomesRef(t *testing.T) {
	raw := `{
		"type": "record",
		"name": "Tree",
		"fields": [
			{"name": "value", "type": "int"},
			{"name": "children", "type": {"type": "array", "items": "Tree"}}
		]
	}`
	s, err := ParseSchema(raw)
	if err != nil {
		t.Fatal(err)
	}
	rec := s.(*RecordSchema)
	children := rec.Fields[1].Type.(*ArraySchema)
	ref, ok := children.Items.(*RefSchema)
	if !ok {
		t.Fatalf("got %T, want *RefSchema", children.Items)
	}
	if ref.Name != "Tree" {
		t.Fatalf("got ref name %q, want Tree", ref.Name)
	}
}

func TestSchemaRegistryMap(t *testing.T) {
	// A named-type reference always parses to a RefSchema, even when the
	// name is already registered: the parser never inlines a registered
	// definition in place of a reference, since that would turn a
	// self-reference (the common case, e.g. Tree -> array<Tree>) into a
	// true cycle in the parsed tree that Compile's recursive descent has no
	// way to stop unwinding. Resolution happens later, in Compile's
	// ref-resolution pass, against whatever Record/Enum/Fixed definitions
	// appear in the tree being compiled.
	registry := make(map[string]Schema)
	if _, err := ParseSchemaWithRegistry(`{"type":"record","name":"org.example.A","fields":[{"name":"x","type":"int"}]}`, registry); err != nil {
		t.Fatal(err)
	}
	s, err := ParseSchemaWithRegistry(`"org.example.A"`, registry)
	if err != nil {
		t.Fatal(err)
	}
	ref, ok := s.(*RefSchema)
	if !ok {
		t.Fatalf("got %T, want *RefSchema", s)
	}
	if ref.Name != "org.example.A" {
		t.Fatalf("got ref name %q, want org.example.A", ref.Name)
	}
}
