package avro

import "fmt"

// CompiledSchema is the immutable result of Compile: a serialization-ready
// SSchema tree plus the ref table it is cut against. It may be reused across
// arbitrarily many encodes, concurrently, on different sinks (spec §5).
type CompiledSchema struct {
	root SSchema
	refs []SSchema
}

// SchemaError reports that a schema could not be compiled: the only case
// this implementation detects is a dangling named reference (spec §4.1,
// §8 invariants).
type SchemaError struct {
	Name string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("avro: dangling reference to %q", e.Name)
}

// compiler carries the state threaded through the recursive descent of spec
// §4.1: the monotonic name → ref-index table. The parallel refs slice the
// ref-resolution pass fills in is built by Compile and passed to resolveRefs.
type compiler struct {
	refIndex map[string]int
}

// Compile converts a parsed Avro schema into a CompiledSchema. It performs a
// single recursive descent building the SSchema tree and a name → ref-index
// table (spec §4.1 steps 1-5), then a second pass walking the built tree to
// resolve every Ref to the SSchema address of its named definition. A name
// referenced but never defined anywhere in the tree is reported as a
// SchemaError naming it.
func Compile(schema Schema) (*CompiledSchema, error) {
	c := &compiler{refIndex: make(map[string]int)}
	root, err := c.compile(schema, "")
	if err != nil {
		return nil, err
	}

	refs := make([]SSchema, len(c.refIndex))
	resolved := make([]bool, len(refs))
	c.resolveRefs(root, refs, resolved)
	for name, index := range c.refIndex {
		if !resolved[index] {
			return nil, &SchemaError{Name: name}
		}
	}

	return &CompiledSchema{root: root, refs: refs}, nil
}

func (c *compiler) compile(schema Schema, namespace string) (SSchema, error) {
	switch schema.Type() {
	case Null:
		return sNull, nil
	case Boolean:
		return sBoolean, nil
	case Int:
		return sInt, nil
	case Long:
		return sLong, nil
	case Float:
		return sFloat, nil
	case Double:
		return sDouble, nil
	case Bytes:
		return sBytes, nil
	case String:
		return sString, nil
	case Uuid:
		return sUuid, nil
	case Date:
		return sDate, nil
	case TimeMillis:
		return sTimeMillis, nil
	case TimeMicros:
		return sTimeMicros, nil
	case TimestampMillis:
		return sTimestampMillis, nil
	case TimestampMicros:
		return sTimestampMicros, nil
	case Duration:
		return sDuration, nil

	case Array:
		arr := schema.(*ArraySchema)
		elem, err := c.compile(arr.Items, namespace)
		if err != nil {
			return nil, err
		}
		return &ArraySSchema{Elem: elem}, nil

	case Map:
		m := schema.(*MapSchema)
		value, err := c.compile(m.Values, namespace)
		if err != nil {
			return nil, err
		}
		return &MapSSchema{Value: value}, nil

	case Union:
		return c.compileUnion(schema.(*UnionSchema), namespace)

	case Record:
		return c.compileRecord(schema.(*RecordSchema), namespace)

	case Enum:
		return c.compileEnum(schema.(*EnumSchema), namespace)

	case Fixed:
		return c.compileFixed(schema.(*FixedSchema), namespace)

	case Decimal:
		d := schema.(*DecimalSchema)
		inner, err := c.compile(d.Inner, namespace)
		if err != nil {
			return nil, err
		}
		return &DecimalSSchema{Precision: d.Precision, Scale: d.Scale, Inner: inner}, nil

	case Ref:
		r := schema.(*RefSchema)
		return &RefSSchema{Name: r.Name, Index: c.indexFor(r.Name)}, nil

	default:
		return nil, fmt.Errorf("avro: unsupported schema type %v", schema.Type())
	}
}

// indexFor returns the ref-table slot for name, assigning the next
// monotonic index the first time it is seen (spec §4.1 step 5).
func (c *compiler) indexFor(name string) int {
	if idx, ok := c.refIndex[name]; ok {
		return idx
	}
	idx := len(c.refIndex)
	c.refIndex[name] = idx
	return idx
}

func (c *compiler) compileUnion(u *UnionSchema, namespace string) (SSchema, error) {
	variants := make([]SSchema, len(u.Types))
	for i, t := range u.Types {
		v, err := c.compile(t, namespace)
		if err != nil {
			return nil, err
		}
		variants[i] = v
	}
	// Build the dispatch table by scanning variants in order and inserting
	// (kind(v), i); a colliding kind is silently not inserted (first wins),
	// so |dispatch| < |variants| precisely flags an ambiguous union (spec
	// §3.3/§4.1 step 4).
	dispatch := make(map[SchemaKind]int, len(variants))
	for i, v := range variants {
		k := v.Kind()
		if _, exists := dispatch[k]; !exists {
			dispatch[k] = i
		}
	}
	return &UnionSSchema{Variants: variants, Dispatch: dispatch}, nil
}

func (c *compiler) compileRecord(r *RecordSchema, enclosing string) (SSchema, error) {
	fullName := getFullName(r.Name, enclosing)
	namespace := recordNamespace(r.Namespace, fullName)
	c.indexFor(fullName) // reserve a slot in case this record is recursive

	fields := make([]RecordField, len(r.Fields))
	for i, f := range r.Fields {
		fieldSchema, err := c.compile(f.Type, namespace)
		if err != nil {
			return nil, err
		}
		fields[i] = RecordField{Name: f.Name, Schema: fieldSchema}
	}
	return &RecordSSchema{Name: fullName, Fields: fields}, nil
}

func (c *compiler) compileEnum(e *EnumSchema, enclosing string) (SSchema, error) {
	fullName := getFullName(e.Name, enclosing)
	ordinals := make(map[string]int, len(e.Symbols))
	for i, sym := range e.Symbols {
		ordinals[sym] = i
	}
	return &EnumSSchema{Name: fullName, Ordinals: ordinals}, nil
}

func (c *compiler) compileFixed(f *FixedSchema, enclosing string) (SSchema, error) {
	// Avro's duration logical type is carried by the parser as a plain
	// Fixed(12) with LogicalType "duration" rather than its own parsed-schema
	// case (there is no distinct JSON "type" for it to key off of); the
	// compiler is where it turns into the dedicated DurationSSchema leaf.
	if f.LogicalType == logicalTypeDuration && f.Size == 12 {
		return sDuration, nil
	}
	fullName := getFullName(f.Name, enclosing)
	return &FixedSSchema{Name: fullName, Size: f.Size}, nil
}

// recordNamespace mirrors spec §4.1 step 3: a record's own namespace (if it
// declares one) becomes the enclosing namespace for its children; otherwise
// its fully-qualified name's namespace portion carries forward.
func recordNamespace(declared, fullName string) string {
	if declared != "" {
		return declared
	}
	for i := len(fullName) - 1; i >= 0; i-- {
		if fullName[i] == '.' {
			return fullName[:i]
		}
	}
	return ""
}

// resolveRefs walks the compiled tree and, for every Record/Enum/Fixed whose
// fully-qualified name appears in refIndex, records its address at the
// corresponding refs slot (spec §4.1, "Ref-resolution pass").
func (c *compiler) resolveRefs(s SSchema, refs []SSchema, resolved []bool) {
	switch n := s.(type) {
	case *ArraySSchema:
		c.resolveRefs(n.Elem, refs, resolved)
	case *MapSSchema:
		c.resolveRefs(n.Value, refs, resolved)
	case *UnionSSchema:
		for _, v := range n.Variants {
			c.resolveRefs(v, refs, resolved)
		}
	case *DecimalSSchema:
		c.resolveRefs(n.Inner, refs, resolved)
	case *RecordSSchema:
		if idx, ok := c.refIndex[n.Name]; ok {
			refs[idx] = n
			resolved[idx] = true
		}
		for _, f := range n.Fields {
			c.resolveRefs(f.Schema, refs, resolved)
		}
	case *EnumSSchema:
		if idx, ok := c.refIndex[n.Name]; ok {
			refs[idx] = n
			resolved[idx] = true
		}
	case *FixedSSchema:
		if idx, ok := c.refIndex[n.Name]; ok {
			refs[idx] = n
			resolved[idx] = true
		}
	}
}
