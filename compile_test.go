package avro

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func compileRaw(t *testing.T, raw string) *CompiledSchema {
	t.Helper()
	parsed, err := ParseSchema(raw)
	require.NoError(t, err)
	compiled, err := Compile(parsed)
	require.NoError(t, err)
	return compiled
}

func TestCompilePrimitive(t *testing.T) {
	c := compileRaw(t, `"int"`)
	require.Equal(t, KindInt, c.root.Kind())
}

func TestCompileArrayAndMap(t *testing.T) {
	c := compileRaw(t, `{"type":"array","items":"string"}`)
	arr, ok := c.root.(*ArraySSchema)
	require.True(t, ok)
	require.Equal(t, KindString, arr.Elem.Kind())

	c = compileRaw(t, `{"type":"map","values":"long"}`)
	m, ok := c.root.(*MapSSchema)
	require.True(t, ok)
	require.Equal(t, KindLong, m.Value.Kind())
}

func TestCompileRecord(t *testing.T) {
	c := compileRaw(t, `{
		"type": "record",
		"name": "Foo",
		"fields": [
			{"name": "bar", "type": "string"},
			{"name": "baz", "type": ["null", "int"]}
		]
	}`)
	rec, ok := c.root.(*RecordSSchema)
	require.True(t, ok)
	require.Equal(t, "Foo", rec.Name)
	require.Len(t, rec.Fields, 2)
	require.Equal(t, "bar", rec.Fields[0].Name)
	require.Equal(t, KindString, rec.Fields[0].Schema.Kind())
	union, ok := rec.Fields[1].Schema.(*UnionSSchema)
	require.True(t, ok)
	require.Len(t, union.Variants, 2)
	require.Equal(t, 2, len(union.Dispatch), "unambiguous union dispatch covers every variant")
}

func TestCompileEnumPreservesOrder(t *testing.T) {
	c := compileRaw(t, `{"type":"enum","name":"Suit","symbols":["SPADES","HEARTS","DIAMONDS","CLUBS"]}`)
	e, ok := c.root.(*EnumSSchema)
	require.True(t, ok)
	require.Equal(t, 0, e.Ordinals["SPADES"])
	require.Equal(t, 1, e.Ordinals["HEARTS"])
	require.Equal(t, 3, e.Ordinals["CLUBS"])
}

func TestCompileDuration(t *testing.T) {
	c := compileRaw(t, `{"type":"fixed","name":"unused","size":12,"logicalType":"duration"}`)
	require.Equal(t, KindDuration, c.root.Kind())
}

func TestCompileDecimal(t *testing.T) {
	c := compileRaw(t, `{"type":"bytes","logicalType":"decimal","precision":9,"scale":2}`)
	d, ok := c.root.(*DecimalSSchema)
	require.True(t, ok)
	require.Equal(t, 9, d.Precision)
	require.Equal(t, 2, d.Scale)
	require.Equal(t, KindBytes, d.Inner.Kind())
}

func TestCompileRecursiveRecordResolvesRef(t *testing.T) {
	c := compileRaw(t, `{
		"type": "record",
		"name": "Tree",
		"fields": [
			{"name": "value", "type": "int"},
			{"name": "children", "type": {"type": "array", "items": "Tree"}}
		]
	}`)
	rec := c.root.(*RecordSSchema)
	children := rec.Fields[1].Schema.(*ArraySSchema)
	ref, ok := children.Elem.(*RefSSchema)
	require.True(t, ok)
	require.Equal(t, "Tree", ref.Name)
	require.Equal(t, rec, c.refs[ref.Index])
}

func TestCompileDanglingReferenceIsSchemaError(t *testing.T) {
	parsed, err := ParseSchema(`{
		"type": "record",
		"name": "Foo",
		"fields": [
			{"name": "other", "type": "Bar"}
		]
	}`)
	require.NoError(t, err)
	_, err = Compile(parsed)
	require.Error(t, err)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, "Bar", schemaErr.Name)
}

func TestCompileAmbiguousUnionDispatchIsIncomplete(t *testing.T) {
	c := compileRaw(t, `[
		{"type": "record", "name": "Foo", "fields": [{"name": "a", "type": "int"}]},
		{"type": "record", "name": "Bar", "fields": [{"name": "b", "type": "int"}]}
	]`)
	union, ok := c.root.(*UnionSSchema)
	require.True(t, ok)
	require.Len(t, union.Variants, 2)
	require.True(t, union.Ambiguous(), "two record variants share the Record kind")
	require.Less(t, len(union.Dispatch), len(union.Variants))
}
