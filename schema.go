package avro

import (
	"fmt"
	"strings"
)

// ***********************
// NOTICE this file was changed beginning in November 2016 by the team maintaining
// https://github.com/go-avro/avro. This notice is required to be here due to the
// terms of the Apache license, see LICENSE for details.
// ***********************

// SchemaType is a constant identifying the case of a parsed Avro schema node.
// It mirrors the case labels an external Avro JSON parser is expected to
// produce (spec §6.1): primitive types, the seven logical-type leaves, and
// the composite/named cases, plus Ref for a named-type back-reference.
type SchemaType int

const (
	Null SchemaType = iota
	Boolean
	Int
	Long
	Float
	Double
	Bytes
	String
	Uuid
	Date
	TimeMillis
	TimeMicros
	TimestampMillis
	TimestampMicros
	Duration
	Array
	Map
	Union
	Record
	Enum
	Fixed
	Decimal
	Ref
)

func (t SchemaType) String() string {
	switch t {
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case Bytes:
		return "bytes"
	case String:
		return "string"
	case Uuid:
		return "uuid"
	case Date:
		return "date"
	case TimeMillis:
		return "time-millis"
	case TimeMicros:
		return "time-micros"
	case TimestampMillis:
		return "timestamp-millis"
	case TimestampMicros:
		return "timestamp-micros"
	case Duration:
		return "duration"
	case Array:
		return "array"
	case Map:
		return "map"
	case Union:
		return "union"
	case Record:
		return "record"
	case Enum:
		return "enum"
	case Fixed:
		return "fixed"
	case Decimal:
		return "decimal"
	case Ref:
		return "ref"
	default:
		return "unknown"
	}
}

const (
	typeRecord  = "record"
	typeUnion   = "union"
	typeEnum    = "enum"
	typeArray   = "array"
	typeMap     = "map"
	typeFixed   = "fixed"
	typeString  = "string"
	typeBytes   = "bytes"
	typeInt     = "int"
	typeLong    = "long"
	typeFloat   = "float"
	typeDouble  = "double"
	typeBoolean = "boolean"
	typeNull    = "null"

	logicalTypeUUID            = "uuid"
	logicalTypeDate            = "date"
	logicalTypeDecimal         = "decimal"
	logicalTypeDuration        = "duration"
	logicalTypeTimeMillis      = "time-millis"
	logicalTypeTimeMicros      = "time-micros"
	logicalTypeTimestampMillis = "timestamp-millis"
	logicalTypeTimestampMicros = "timestamp-micros"
)

const (
	schemaAliasesField     = "aliases"
	schemaDefaultField     = "default"
	schemaDocField         = "doc"
	schemaFieldsField      = "fields"
	schemaItemsField       = "items"
	schemaNameField        = "name"
	schemaNamespaceField   = "namespace"
	schemaSizeField        = "size"
	schemaSymbolsField     = "symbols"
	schemaTypeField        = "type"
	schemaValuesField      = "values"
	schemaLogicalTypeField = "logicalType"
	schemaScaleField       = "scale"
	schemaPrecisionField   = "precision"
)

// Schema is a single node of a parsed Avro schema, exactly as an external
// JSON-schema parser is expected to hand it to Compile (spec §6.1). Building
// this parser is out of this core's scope; the concrete types below exist so
// the Schema Compiler has something real to consume and so this module is
// runnable end to end without an external dependency on a second Avro
// library.
type Schema interface {
	// Type returns the case label for this schema node.
	Type() SchemaType
	// GetName returns the name as declared for Record/Enum/Fixed (the
	// namespace is kept separately; see GetFullName), or the
	// primitive/logical type name otherwise.
	GetName() string
	// Prop returns a custom (non-reserved) property of this schema node.
	Prop(key string) (interface{}, bool)
	// String returns a JSON rendering, used only for diagnostics.
	String() string
}

type primitiveSchema struct{ typ SchemaType }

func (p *primitiveSchema) Type() SchemaType                { return p.typ }
func (p *primitiveSchema) GetName() string                 { return p.typ.String() }
func (p *primitiveSchema) Prop(string) (interface{}, bool) { return nil, false }
func (p *primitiveSchema) String() string                  { return fmt.Sprintf("%q", p.typ.String()) }

// NullSchema represents the Avro null type.
type NullSchema struct{ primitiveSchema }

// BooleanSchema represents the Avro boolean type.
type BooleanSchema struct{ primitiveSchema }

// IntSchema represents the Avro int type.
type IntSchema struct{ primitiveSchema }

// FloatSchema represents the Avro float type.
type FloatSchema struct{ primitiveSchema }

// DoubleSchema represents the Avro double type.
type DoubleSchema struct{ primitiveSchema }

// StringSchema represents the Avro string type.
type StringSchema struct{ primitiveSchema }

// UuidSchema represents the logical type "uuid" (wire encoding: String).
type UuidSchema struct{ primitiveSchema }

// DateSchema represents the logical type "date" (wire encoding: Int).
type DateSchema struct{ primitiveSchema }

// TimeMillisSchema represents the logical type "time-millis" (wire encoding: Int).
type TimeMillisSchema struct{ primitiveSchema }

// TimeMicrosSchema represents the logical type "time-micros" (wire encoding: Long).
type TimeMicrosSchema struct{ primitiveSchema }

// TimestampMillisSchema represents the logical type "timestamp-millis" (wire encoding: Long).
type TimestampMillisSchema struct{ primitiveSchema }

// TimestampMicrosSchema represents the logical type "timestamp-micros" (wire encoding: Long).
type TimestampMicrosSchema struct{ primitiveSchema }

// DurationSchema represents the logical type "duration" (wire encoding: Fixed(12)).
type DurationSchema struct{ primitiveSchema }

func newNullSchema() *NullSchema       { return &NullSchema{primitiveSchema{Null}} }
func newBooleanSchema() *BooleanSchema { return &BooleanSchema{primitiveSchema{Boolean}} }
func newIntSchema() *IntSchema         { return &IntSchema{primitiveSchema{Int}} }
func newFloatSchema() *FloatSchema     { return &FloatSchema{primitiveSchema{Float}} }
func newDoubleSchema() *DoubleSchema   { return &DoubleSchema{primitiveSchema{Double}} }
func newStringSchema() *StringSchema   { return &StringSchema{primitiveSchema{String}} }

// LongSchema represents the Avro long type, optionally carrying a logical
// type the parser does not map to a node of its own (time-micros,
// timestamp-millis and timestamp-micros parse to TimeMicrosSchema,
// TimestampMillisSchema and TimestampMicrosSchema instead).
type LongSchema struct {
	primitiveSchema
	LogicalType string
}

func newLongSchema() *LongSchema { return &LongSchema{primitiveSchema: primitiveSchema{Long}} }

// BytesSchema represents the Avro bytes type, optionally carrying the
// "decimal" logical type (superseded on the compiled side by DecimalSSchema).
type BytesSchema struct {
	primitiveSchema
	LogicalType string
	Scale       int
	Precision   int
}

func newBytesSchema() *BytesSchema { return &BytesSchema{primitiveSchema: primitiveSchema{Bytes}} }

// ArraySchema represents the Avro array type.
type ArraySchema struct {
	Items      Schema
	Properties map[string]interface{}
}

func (s *ArraySchema) Type() SchemaType { return Array }
func (s *ArraySchema) GetName() string  { return typeArray }
func (s *ArraySchema) Prop(key string) (interface{}, bool) {
	v, ok := s.Properties[key]
	return v, ok
}
func (s *ArraySchema) String() string {
	return fmt.Sprintf(`{"type":"array","items":%s}`, s.Items.String())
}

// MapSchema represents the Avro map type. Map keys are implicitly strings.
type MapSchema struct {
	Values     Schema
	Properties map[string]interface{}
}

func (s *MapSchema) Type() SchemaType { return Map }
func (s *MapSchema) GetName() string  { return typeMap }
func (s *MapSchema) Prop(key string) (interface{}, bool) {
	v, ok := s.Properties[key]
	return v, ok
}
func (s *MapSchema) String() string {
	return fmt.Sprintf(`{"type":"map","values":%s}`, s.Values.String())
}

// UnionSchema represents an Avro union: an ordered list of variant schemas.
type UnionSchema struct {
	Types []Schema
}

func (s *UnionSchema) Type() SchemaType                { return Union }
func (s *UnionSchema) GetName() string                 { return typeUnion }
func (s *UnionSchema) Prop(string) (interface{}, bool) { return nil, false }
func (s *UnionSchema) String() string {
	parts := make([]string, len(s.Types))
	for i, t := range s.Types {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// SchemaField is a single field of a RecordSchema.
type SchemaField struct {
	Name       string
	Doc        string
	Default    interface{}
	HasDefault bool
	Aliases    []string
	Type       Schema
	Properties map[string]interface{}
}

func (f *SchemaField) Prop(key string) (interface{}, bool) {
	v, ok := f.Properties[key]
	return v, ok
}

// RecordSchema represents the Avro record type.
type RecordSchema struct {
	Name       string
	Namespace  string
	Doc        string
	Aliases    []string
	Properties map[string]interface{}
	Fields     []*SchemaField
}

func (s *RecordSchema) Type() SchemaType { return Record }
func (s *RecordSchema) GetName() string  { return s.Name }
func (s *RecordSchema) Prop(key string) (interface{}, bool) {
	v, ok := s.Properties[key]
	return v, ok
}
func (s *RecordSchema) String() string {
	return fmt.Sprintf("{%q: %q, %q: %q}", "type", "record", "name", s.Name)
}

// EnumSchema represents the Avro enum type. Symbols preserve declared order,
// which is wire-significant: ordinal position is what gets encoded.
type EnumSchema struct {
	Name       string
	Namespace  string
	Aliases    []string
	Doc        string
	Symbols    []string
	Properties map[string]interface{}
}

func (s *EnumSchema) Type() SchemaType { return Enum }
func (s *EnumSchema) GetName() string  { return s.Name }
func (s *EnumSchema) Prop(key string) (interface{}, bool) {
	v, ok := s.Properties[key]
	return v, ok
}
func (s *EnumSchema) String() string {
	return fmt.Sprintf("{%q: %q, %q: %q}", "type", "enum", "name", s.Name)
}

// FixedSchema represents the Avro fixed type, optionally carrying the
// "decimal" logical type.
type FixedSchema struct {
	Name        string
	Namespace   string
	Size        int
	LogicalType string
	Scale       int
	Precision   int
	Properties  map[string]interface{}
}

func (s *FixedSchema) Type() SchemaType { return Fixed }
func (s *FixedSchema) GetName() string  { return s.Name }
func (s *FixedSchema) Prop(key string) (interface{}, bool) {
	v, ok := s.Properties[key]
	return v, ok
}
func (s *FixedSchema) String() string {
	return fmt.Sprintf("{%q: %q, %q: %q, %q: %d}", "type", "fixed", "name", s.Name, "size", s.Size)
}

// DecimalSchema represents the Avro "decimal" logical type as its own node,
// wrapping the Bytes-or-Fixed schema it is physically encoded as (spec §3.1).
type DecimalSchema struct {
	Precision int
	Scale     int
	Inner     Schema
}

func (s *DecimalSchema) Type() SchemaType                { return Decimal }
func (s *DecimalSchema) GetName() string                 { return "decimal" }
func (s *DecimalSchema) Prop(string) (interface{}, bool) { return nil, false }
func (s *DecimalSchema) String() string {
	return fmt.Sprintf(`{"type":"%s","logicalType":"decimal","precision":%d,"scale":%d}`,
		s.Inner.GetName(), s.Precision, s.Scale)
}

// RefSchema is a leaf standing in for a reference by name to a named type
// (Record, Enum, or Fixed), breaking recursion. The parser emits one for
// every such reference, whether or not the definition was seen before it;
// Compile reports a name with no definition in the tree as a SchemaError.
// Name is the fully-qualified name being referenced.
type RefSchema struct {
	Name string
}

func (s *RefSchema) Type() SchemaType                { return Ref }
func (s *RefSchema) GetName() string                 { return s.Name }
func (s *RefSchema) Prop(string) (interface{}, bool) { return nil, false }
func (s *RefSchema) String() string {
	return fmt.Sprintf("%q", s.Name)
}

// GetFullName returns the fully-qualified name for a schema: for
// Record/Enum/Fixed, the declared name qualified by the node's own Namespace
// field (a namespace inherited from an enclosing definition is not stored on
// the node and is not applied); for any other schema, GetName.
func GetFullName(schema Schema) string {
	switch s := schema.(type) {
	case *RecordSchema:
		return getFullName(s.Name, s.Namespace)
	case *EnumSchema:
		return getFullName(s.Name, s.Namespace)
	case *FixedSchema:
		return getFullName(s.Name, s.Namespace)
	}
	return schema.GetName()
}

func getFullName(name, namespace string) string {
	if len(namespace) > 0 && !strings.ContainsRune(name, '.') {
		return namespace + "." + name
	}
	return name
}
