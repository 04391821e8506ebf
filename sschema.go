package avro

// SchemaKind is the kind-only discriminant of a compiled SSchema node: the
// case tag without its payload. It is comparable and totally ordered (a
// plain int), which is what spec §3.1 asks of it ("Hash+Ord") so it can key
// a union's dispatch table.
type SchemaKind int

const (
	KindNull SchemaKind = iota
	KindBoolean
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBytes
	KindString
	KindUuid
	KindDate
	KindTimeMillis
	KindTimeMicros
	KindTimestampMillis
	KindTimestampMicros
	KindDuration
	KindArray
	KindMap
	KindUnion
	KindRecord
	KindEnum
	KindFixed
	KindDecimal
	KindRef
)

func (k SchemaKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindUuid:
		return "uuid"
	case KindDate:
		return "date"
	case KindTimeMillis:
		return "time-millis"
	case KindTimeMicros:
		return "time-micros"
	case KindTimestampMillis:
		return "timestamp-millis"
	case KindTimestampMicros:
		return "timestamp-micros"
	case KindDuration:
		return "duration"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindUnion:
		return "union"
	case KindRecord:
		return "record"
	case KindEnum:
		return "enum"
	case KindFixed:
		return "fixed"
	case KindDecimal:
		return "decimal"
	case KindRef:
		return "ref"
	default:
		return "unknown"
	}
}

// SSchema is a node of the compiled, serialization-optimized schema tree
// (spec §3.1). Unlike Schema, it carries no parser bookkeeping: named
// references are flattened to an index into a ref table, union variant
// dispatch is precomputed, and enum symbol lookup is a plain map.
type SSchema interface {
	// Kind returns this node's kind-only discriminant.
	Kind() SchemaKind
}

type leafSSchema struct{ kind SchemaKind }

func (l leafSSchema) Kind() SchemaKind { return l.kind }

// NullSSchema, BooleanSSchema, ... are the primitive and logical-type leaves;
// none carries a payload, so a single kind field fully describes them.
type (
	NullSSchema             struct{ leafSSchema }
	BooleanSSchema          struct{ leafSSchema }
	IntSSchema              struct{ leafSSchema }
	LongSSchema             struct{ leafSSchema }
	FloatSSchema            struct{ leafSSchema }
	DoubleSSchema           struct{ leafSSchema }
	BytesSSchema            struct{ leafSSchema }
	StringSSchema           struct{ leafSSchema }
	UuidSSchema             struct{ leafSSchema }
	DateSSchema             struct{ leafSSchema }
	TimeMillisSSchema       struct{ leafSSchema }
	TimeMicrosSSchema       struct{ leafSSchema }
	TimestampMillisSSchema  struct{ leafSSchema }
	TimestampMicrosSSchema  struct{ leafSSchema }
	DurationSSchema         struct{ leafSSchema }
)

var (
	sNull            = &NullSSchema{leafSSchema{KindNull}}
	sBoolean         = &BooleanSSchema{leafSSchema{KindBoolean}}
	sInt             = &IntSSchema{leafSSchema{KindInt}}
	sLong            = &LongSSchema{leafSSchema{KindLong}}
	sFloat           = &FloatSSchema{leafSSchema{KindFloat}}
	sDouble          = &DoubleSSchema{leafSSchema{KindDouble}}
	sBytes           = &BytesSSchema{leafSSchema{KindBytes}}
	sString          = &StringSSchema{leafSSchema{KindString}}
	sUuid            = &UuidSSchema{leafSSchema{KindUuid}}
	sDate            = &DateSSchema{leafSSchema{KindDate}}
	sTimeMillis      = &TimeMillisSSchema{leafSSchema{KindTimeMillis}}
	sTimeMicros      = &TimeMicrosSSchema{leafSSchema{KindTimeMicros}}
	sTimestampMillis = &TimestampMillisSSchema{leafSSchema{KindTimestampMillis}}
	sTimestampMicros = &TimestampMicrosSSchema{leafSSchema{KindTimestampMicros}}
	sDuration        = &DurationSSchema{leafSSchema{KindDuration}}
)

// ArraySSchema is Array(elem) from spec §3.1.
type ArraySSchema struct {
	Elem SSchema
}

func (s *ArraySSchema) Kind() SchemaKind { return KindArray }

// MapSSchema is Map(value) from spec §3.1; keys are implicitly strings.
type MapSSchema struct {
	Value SSchema
}

func (s *MapSSchema) Kind() SchemaKind { return KindMap }

// UnionSSchema is Union{variants, dispatch} from spec §3.1/§3.3. Dispatch
// maps a variant's kind discriminant to its index in Variants. If
// len(Dispatch) < len(Variants), two or more variants share a kind and the
// union is ambiguous (spec §3.3): the encoder must refuse to encode through
// it rather than guess.
type UnionSSchema struct {
	Variants []SSchema
	Dispatch map[SchemaKind]int
}

func (s *UnionSSchema) Kind() SchemaKind { return KindUnion }

// Ambiguous reports whether this union has two or more variants sharing a
// kind, making dispatch-by-kind alone insufficient (spec §3.3).
func (s *UnionSSchema) Ambiguous() bool {
	return len(s.Dispatch) < len(s.Variants)
}

// RecordField is one (name, schema) pair of a compiled record, in wire order.
type RecordField struct {
	Name   string
	Schema SSchema
}

// RecordSSchema is Record{name, fields} from spec §3.1.
type RecordSSchema struct {
	Name   string
	Fields []RecordField
}

func (s *RecordSSchema) Kind() SchemaKind { return KindRecord }

// EnumSSchema is Enum{name, symbols} from spec §3.1; Ordinals preserves
// declared order, which is wire-significant.
type EnumSSchema struct {
	Name     string
	Ordinals map[string]int
}

func (s *EnumSSchema) Kind() SchemaKind { return KindEnum }

// FixedSSchema is Fixed{name, size} from spec §3.1.
type FixedSSchema struct {
	Name string
	Size int
}

func (s *FixedSSchema) Kind() SchemaKind { return KindFixed }

// DecimalSSchema is Decimal{precision, scale, inner} from spec §3.1; Inner
// is always a BytesSSchema or FixedSSchema.
type DecimalSSchema struct {
	Precision int
	Scale     int
	Inner     SSchema
}

func (s *DecimalSSchema) Kind() SchemaKind { return KindDecimal }

// RefSSchema is Ref{name, index} from spec §3.1/§3.2: a leaf whose meaning is
// "the schema at refs[Index]", breaking a recursive named-type cycle. A
// cursor resting on a RefSSchema is always resolved to refs[Index] before any
// event is matched against it (spec §4.2, cursor normalization); its own
// KindRef discriminant is visible only while it sits unresolved inside a
// union's Dispatch table.
type RefSSchema struct {
	Name  string
	Index int
}

func (s *RefSSchema) Kind() SchemaKind { return KindRef }
