package avro

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scalarValue adapts a single Encoder call to the Value interface, letting
// tests exercise one event at a time without a dedicated type per schema.
type scalarValue func(e *Encoder) error

func (f scalarValue) EncodeAvro(e *Encoder) error { return f(e) }

func intValue(v int32) Value    { return scalarValue(func(e *Encoder) error { return e.Int(v) }) }
func longValue(v int64) Value   { return scalarValue(func(e *Encoder) error { return e.Long(v) }) }
func stringValue(v string) Value {
	return scalarValue(func(e *Encoder) error { return e.String(v) })
}
func nullValue() Value { return scalarValue(func(e *Encoder) error { return e.Null() }) }

func seqValue(elems ...Value) Value {
	return scalarValue(func(e *Encoder) error {
		return e.Seq(len(elems), func(s *SeqEncoder) error {
			for _, el := range elems {
				if err := s.Element(el); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

type fooValue struct {
	bar string
	baz int32
}

func (f fooValue) EncodeAvro(e *Encoder) error {
	return e.Struct("Foo", func(s *StructEncoder) error {
		if err := s.Field("bar", stringValue(f.bar)); err != nil {
			return err
		}
		return s.Field("baz", intValue(f.baz))
	})
}

func TestEncodeIntGoldenBytes(t *testing.T) {
	// zigzag(329847) = 659694 = 0xA10EE; little-endian base-128 varint
	// groups (7 bits each, continuation bit set on every byte but the
	// last): 0xEE, 0xA1, 0x28.
	c := compileRaw(t, `"int"`)
	out, err := c.Serialize(intValue(329847))
	require.NoError(t, err)
	require.Equal(t, []byte{0xEE, 0xA1, 0x28}, out)
}

func TestEncodeArrayOfStringsGoldenBytes(t *testing.T) {
	c := compileRaw(t, `{"type":"array","items":"string"}`)
	out, err := c.Serialize(seqValue(stringValue("foo"), stringValue("foo")))
	require.NoError(t, err)
	require.Equal(t, []byte{0x04, 0x06, 'f', 'o', 'o', 0x06, 'f', 'o', 'o', 0x00}, out)
}

func TestEncodeEmptyArrayGoldenBytes(t *testing.T) {
	c := compileRaw(t, `{"type":"array","items":"string"}`)
	out, err := c.Serialize(seqValue())
	require.NoError(t, err)
	require.Equal(t, []byte{0x00}, out)
}

func TestEncodeRecordGoldenBytes(t *testing.T) {
	c := compileRaw(t, `{
		"type": "record",
		"name": "Foo",
		"fields": [
			{"name": "bar", "type": "string"},
			{"name": "baz", "type": ["null", "int"]}
		]
	}`)
	out, err := c.Serialize(fooValue{bar: "bar", baz: 42})
	require.NoError(t, err)
	require.Equal(t, []byte{0x06, 'b', 'a', 'r', 0x02, 0x54}, out)
}

func TestEncodeUnionNullIntGoldenBytes(t *testing.T) {
	c := compileRaw(t, `["null","int"]`)
	out, err := c.Serialize(intValue(42))
	require.NoError(t, err)
	require.Equal(t, []byte{0x02, 0x54}, out)
}

type treeValue struct {
	value    int32
	children []treeValue
}

func (tr treeValue) EncodeAvro(e *Encoder) error {
	return e.Struct("Tree", func(s *StructEncoder) error {
		if err := s.Field("value", intValue(tr.value)); err != nil {
			return err
		}
		return s.Field("children", scalarValue(func(e *Encoder) error {
			return e.Seq(len(tr.children), func(se *SeqEncoder) error {
				for _, child := range tr.children {
					if err := se.Element(child); err != nil {
						return err
					}
				}
				return nil
			})
		}))
	})
}

func TestEncodeRecursiveTree(t *testing.T) {
	c := compileRaw(t, `{
		"type": "record",
		"name": "Tree",
		"fields": [
			{"name": "value", "type": "int"},
			{"name": "children", "type": {"type": "array", "items": "Tree"}}
		]
	}`)
	tree := treeValue{value: 1, children: []treeValue{
		{value: 2, children: []treeValue{
			{value: 3, children: nil},
		}},
	}}
	out, err := c.Serialize(tree)
	require.NoError(t, err)
	// value=1 (zigzag 0x02), children: one element ->
	//   value=2 (zigzag 0x04), children: one element ->
	//     value=3 (zigzag 0x06), children: empty -> 0x00
	//   terminator 0x00
	// terminator 0x00
	require.Equal(t, []byte{
		0x02, 0x02, 0x04, 0x02, 0x06, 0x00, 0x00, 0x00,
	}, out)
}

type outOfOrderFoo struct{}

func (outOfOrderFoo) EncodeAvro(e *Encoder) error {
	return e.Struct("Foo", func(s *StructEncoder) error {
		return s.Field("b", intValue(1))
	})
}

func TestEncodeOutOfOrderFieldError(t *testing.T) {
	c := compileRaw(t, `{
		"type": "record",
		"name": "Foo",
		"fields": [
			{"name": "a", "type": "int"},
			{"name": "b", "type": "int"}
		]
	}`)
	_, err := c.Serialize(outOfOrderFoo{})
	require.Error(t, err)
	custom, ok := err.(*CustomError)
	require.True(t, ok, "got %T: %v", err, err)
	require.Equal(t, []string{"Foo", "b"}, custom.Path)
	require.Contains(t, custom.Message, "expected field a")
}

func TestEncodeAmbiguousUnionIsCustomError(t *testing.T) {
	c := compileRaw(t, `[
		{"type": "record", "name": "Foo", "fields": [{"name": "a", "type": "int"}]},
		{"type": "record", "name": "Bar", "fields": [{"name": "b", "type": "int"}]}
	]`)
	_, err := c.Serialize(fooValue{bar: "x", baz: 1})
	require.Error(t, err)
	_, ok := err.(*CustomError)
	require.True(t, ok, "got %T: %v", err, err)
}

func TestEncodeNullCursorWithValueIsMismatch(t *testing.T) {
	c := compileRaw(t, `"null"`)
	_, err := c.Serialize(intValue(1))
	require.Error(t, err)
	_, ok := err.(*MismatchError)
	require.True(t, ok, "got %T: %v", err, err)
}

func TestEncodeEnumUnknownSymbolIsCustomError(t *testing.T) {
	c := compileRaw(t, `{"type":"enum","name":"Suit","symbols":["SPADES","HEARTS"]}`)
	_, err := c.Serialize(stringValue("CLUBS"))
	require.Error(t, err)
	custom, ok := err.(*CustomError)
	require.True(t, ok, "got %T: %v", err, err)
	require.Contains(t, custom.Message, "unexpected CLUBS in enum")
}

type fixedValue []byte

func (f fixedValue) EncodeAvro(e *Encoder) error { return e.Bytes(f) }

func TestEncodeFixedSizeMismatchIsCustomError(t *testing.T) {
	c := compileRaw(t, `{"type":"fixed","name":"MD5","size":16}`)
	_, err := c.Serialize(fixedValue([]byte("too short")))
	require.Error(t, err)
	_, ok := err.(*CustomError)
	require.True(t, ok, "got %T: %v", err, err)
}

func TestMapEntryGoldenBytes(t *testing.T) {
	c := compileRaw(t, `{"type":"map","values":"int"}`)
	out, err := c.Serialize(scalarValue(func(e *Encoder) error {
		return e.Map(1, func(m *MapEncoder) error {
			return m.Entry(StringKey("k"), intValue(7))
		})
	}))
	require.NoError(t, err)
	require.Equal(t, []byte{0x02, 0x02, 'k', 0x0E, 0x00}, out)
}

func TestEncodeDateLogicalLeafViaInt(t *testing.T) {
	// Date rides on the underlying Int wire encoding (spec §4.2); Int must
	// resolve against a Date cursor, not just Int/Long.
	c := compileRaw(t, `{"type":"int","logicalType":"date"}`)
	out, err := c.Serialize(intValue(19000))
	require.NoError(t, err)
	require.Equal(t, []byte{0xF0, 0xA8, 0x02}, out)
}

func TestEncodeTimestampMillisLogicalLeafViaLong(t *testing.T) {
	c := compileRaw(t, `{"type":"long","logicalType":"timestamp-millis"}`)
	out, err := c.Serialize(longValue(1700000000123))
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestDoubleRoundTripBytes(t *testing.T) {
	c := compileRaw(t, `"double"`)
	out, err := c.Serialize(scalarValue(func(e *Encoder) error { return e.Double(1.5) }))
	require.NoError(t, err)
	require.Len(t, out, 8)
}
