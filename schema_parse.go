package avro

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
)

// ParseSchemaFile parses the Avro schema stored in the given file.
func ParseSchemaFile(file string) (Schema, error) {
	contents, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return ParseSchema(string(contents))
}

// ParseSchema parses a standalone Avro schema (no shared named-type registry).
func ParseSchema(rawSchema string) (Schema, error) {
	return ParseSchemaWithRegistry(rawSchema, make(map[string]Schema))
}

// ParseSchemaWithRegistry parses a schema, recording each named type it
// defines in the given name → Schema registry. The registry is not consulted
// when resolving references: a name reference always parses to a RefSchema,
// so a definition registered by an earlier call is not inlined here.
func ParseSchemaWithRegistry(rawSchema string, registry map[string]Schema) (Schema, error) {
	var schema interface{}
	if err := json.Unmarshal([]byte(rawSchema), &schema); err != nil {
		schema = rawSchema
	}
	return schemaByType(schema, registry, "")
}

// MustParseSchema is like ParseSchema but panics on error.
func MustParseSchema(rawSchema string) Schema {
	s, err := ParseSchema(rawSchema)
	if err != nil {
		panic(err)
	}
	return s
}

func schemaByType(i interface{}, registry map[string]Schema, namespace string) (Schema, error) {
	switch v := i.(type) {
	case nil:
		return newNullSchema(), nil
	case string:
		return namedOrPrimitive(v, registry, namespace)
	case []interface{}:
		return parseUnionSchema(v, registry, namespace)
	case map[string]interface{}:
		return schemaByMap(v, registry, namespace)
	default:
		return nil, fmt.Errorf("invalid schema node: %#v", i)
	}
}

func namedOrPrimitive(name string, registry map[string]Schema, namespace string) (Schema, error) {
	switch name {
	case typeNull:
		return newNullSchema(), nil
	case typeBoolean:
		return newBooleanSchema(), nil
	case typeInt:
		return newIntSchema(), nil
	case typeLong:
		return newLongSchema(), nil
	case typeFloat:
		return newFloatSchema(), nil
	case typeDouble:
		return newDoubleSchema(), nil
	case typeBytes:
		return newBytesSchema(), nil
	case typeString:
		return newStringSchema(), nil
	default:
		fullName := name
		if !containsDot(fullName) {
			fullName = getFullName(name, namespace)
		}
		// Always cut the back-edge here, even when fullName is already in the
		// registry (the normal case for a record referencing itself, e.g.
		// Tree -> array<Tree>): inlining the registered *RecordSchema would
		// make the parsed tree a true cycle, and compile.go's recursive
		// descent has no visited-set to stop it unwinding forever. The
		// compiler resolves every RefSchema in its ref-resolution pass (spec
		// §4.1 step 5); a name that never gets defined anywhere in the schema
		// is a SchemaError raised by Compile, not by the parser.
		return &RefSchema{Name: fullName}, nil
	}
}

func containsDot(s string) bool {
	for _, r := range s {
		if r == '.' {
			return true
		}
	}
	return false
}

func schemaByMap(v map[string]interface{}, registry map[string]Schema, namespace string) (Schema, error) {
	typeField, _ := v[schemaTypeField].(string)
	switch typeField {
	case typeNull:
		return newNullSchema(), nil
	case typeBoolean:
		return newBooleanSchema(), nil
	case typeInt:
		return parseLogicalInt(v)
	case typeLong:
		return parseLogicalLong(v)
	case typeFloat:
		return newFloatSchema(), nil
	case typeDouble:
		return newDoubleSchema(), nil
	case typeBytes:
		return parseBytesSchema(v)
	case typeString:
		return parseLogicalString(v)
	case typeArray:
		items, err := schemaByType(v[schemaItemsField], registry, namespace)
		if err != nil {
			return nil, err
		}
		return &ArraySchema{Items: items, Properties: getProperties(v)}, nil
	case typeMap:
		values, err := schemaByType(v[schemaValuesField], registry, namespace)
		if err != nil {
			return nil, err
		}
		return &MapSchema{Values: values, Properties: getProperties(v)}, nil
	case typeEnum:
		return parseEnumSchema(v, registry, namespace)
	case typeFixed:
		return parseFixedSchema(v, registry, namespace)
	case typeRecord:
		return parseRecordSchema(v, registry, namespace)
	case "":
		// {"type": {...}} indirection: recurse on the inner type node.
		return schemaByType(v[schemaTypeField], registry, namespace)
	default:
		return nil, fmt.Errorf("unknown schema type: %q", typeField)
	}
}

func parseLogicalInt(v map[string]interface{}) (Schema, error) {
	logicalType, _ := v[schemaLogicalTypeField].(string)
	switch logicalType {
	case logicalTypeDate:
		return &DateSchema{primitiveSchema{Date}}, nil
	case logicalTypeTimeMillis:
		return &TimeMillisSchema{primitiveSchema{TimeMillis}}, nil
	default:
		return newIntSchema(), nil
	}
}

func parseLogicalLong(v map[string]interface{}) (Schema, error) {
	logicalType, _ := v[schemaLogicalTypeField].(string)
	switch logicalType {
	case logicalTypeTimeMicros:
		return &TimeMicrosSchema{primitiveSchema{TimeMicros}}, nil
	case logicalTypeTimestampMillis:
		return &TimestampMillisSchema{primitiveSchema{TimestampMillis}}, nil
	case logicalTypeTimestampMicros:
		return &TimestampMicrosSchema{primitiveSchema{TimestampMicros}}, nil
	default:
		schema := newLongSchema()
		schema.LogicalType = logicalType
		return schema, nil
	}
}

func parseLogicalString(v map[string]interface{}) (Schema, error) {
	logicalType, _ := v[schemaLogicalTypeField].(string)
	if logicalType == logicalTypeUUID {
		return &UuidSchema{primitiveSchema{Uuid}}, nil
	}
	return newStringSchema(), nil
}

func parseBytesSchema(v map[string]interface{}) (Schema, error) {
	logicalType, scale, precision, err := parseLogicalType(v)
	if err != nil {
		return nil, err
	}
	inner := &BytesSchema{primitiveSchema: primitiveSchema{Bytes}, LogicalType: logicalType, Scale: scale, Precision: precision}
	if logicalType == logicalTypeDecimal {
		return &DecimalSchema{Precision: precision, Scale: scale, Inner: inner}, nil
	}
	return inner, nil
}

func parseLogicalType(v map[string]interface{}) (logicalType string, scale, precision int, err error) {
	logicalType, _ = v[schemaLogicalTypeField].(string)
	if logicalType == logicalTypeDecimal {
		if f, ok := v[schemaScaleField].(float64); ok {
			scale = int(f)
		}
		f, ok := v[schemaPrecisionField].(float64)
		if !ok {
			return "", 0, 0, fmt.Errorf("decimal type requires a precision")
		}
		precision = int(f)
	}
	return logicalType, scale, precision, nil
}

func parseUnionSchema(v []interface{}, registry map[string]Schema, namespace string) (Schema, error) {
	types := make([]Schema, len(v))
	for i := range v {
		t, err := schemaByType(v[i], registry, namespace)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return &UnionSchema{Types: types}, nil
}

func parseEnumSchema(v map[string]interface{}, registry map[string]Schema, namespace string) (Schema, error) {
	rawSymbols, _ := v[schemaSymbolsField].([]interface{})
	symbols := make([]string, len(rawSymbols))
	for i, s := range rawSymbols {
		symbols[i], _ = s.(string)
	}
	name, _ := v[schemaNameField].(string)
	schema := &EnumSchema{Name: name, Symbols: symbols, Properties: getProperties(v)}
	setOptionalField(&schema.Namespace, v, schemaNamespaceField)
	setOptionalField(&schema.Doc, v, schemaDocField)
	registerNamed(getFullName(name, namespace), schema, registry)
	return schema, nil
}

func parseFixedSchema(v map[string]interface{}, registry map[string]Schema, namespace string) (Schema, error) {
	size, ok := v[schemaSizeField].(float64)
	if !ok {
		return nil, fmt.Errorf("fixed type requires a size")
	}
	logicalType, scale, precision, err := parseLogicalType(v)
	if err != nil {
		return nil, err
	}
	name, _ := v[schemaNameField].(string)
	schema := &FixedSchema{
		Name:        name,
		Size:        int(size),
		LogicalType: logicalType,
		Scale:       scale,
		Precision:   precision,
		Properties:  getProperties(v),
	}
	setOptionalField(&schema.Namespace, v, schemaNamespaceField)
	registerNamed(getFullName(name, namespace), schema, registry)
	if logicalType == logicalTypeDecimal {
		return &DecimalSchema{Precision: precision, Scale: scale, Inner: schema}, nil
	}
	return schema, nil
}

func parseRecordSchema(v map[string]interface{}, registry map[string]Schema, namespace string) (Schema, error) {
	name, _ := v[schemaNameField].(string)
	schema := &RecordSchema{Name: name}
	setOptionalField(&schema.Namespace, v, schemaNamespaceField)
	setOptionalField(&namespace, v, schemaNamespaceField)
	setOptionalField(&schema.Doc, v, schemaDocField)
	if err := setOptionalStringListField(&schema.Aliases, v, schemaAliasesField); err != nil {
		return nil, err
	}
	registerNamed(getFullName(name, namespace), schema, registry)

	rawFields, _ := v[schemaFieldsField].([]interface{})
	fields := make([]*SchemaField, len(rawFields))
	for i, rawField := range rawFields {
		field, err := parseSchemaField(rawField, registry, namespace)
		if err != nil {
			return nil, err
		}
		fields[i] = field
	}
	schema.Fields = fields
	schema.Properties = getProperties(v)
	return schema, nil
}

func parseSchemaField(i interface{}, registry map[string]Schema, namespace string) (*SchemaField, error) {
	v, ok := i.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid field definition: %#v", i)
	}
	name, ok := v[schemaNameField].(string)
	if !ok {
		return nil, fmt.Errorf("field is missing a name")
	}
	field := &SchemaField{Name: name, Properties: getProperties(v)}
	setOptionalField(&field.Doc, v, schemaDocField)
	if err := setOptionalStringListField(&field.Aliases, v, schemaAliasesField); err != nil {
		return nil, err
	}
	fieldType, err := schemaByType(v[schemaTypeField], registry, namespace)
	if err != nil {
		return nil, err
	}
	field.Type = fieldType
	if def, exists := v[schemaDefaultField]; exists {
		field.Default = def
		field.HasDefault = true
	}
	return field, nil
}

func setOptionalField(where *string, v map[string]interface{}, fieldName string) {
	if field, exists := v[fieldName]; exists {
		if s, ok := field.(string); ok {
			*where = s
		}
	}
}

func setOptionalStringListField(where *[]string, v map[string]interface{}, fieldName string) error {
	field, exists := v[fieldName]
	if !exists {
		return nil
	}
	boxed, ok := field.([]interface{})
	if !ok {
		return nil
	}
	list := make([]string, len(boxed))
	for i, entry := range boxed {
		s, ok := entry.(string)
		if !ok {
			return fmt.Errorf("bad %q entry %#v", fieldName, entry)
		}
		list[i] = s
	}
	*where = list
	return nil
}

// registerNamed records a named type (Record/Enum/Fixed) in the registry
// under its fully-qualified name; the first definition of a name wins. The
// compiler does not read the registry: its ref-resolution pass resolves
// references against the definitions in the compiled tree.
func registerNamed(name string, schema Schema, registry map[string]Schema) {
	if registry == nil {
		return
	}
	if _, exists := registry[name]; !exists {
		registry[name] = schema
	}
}

func getProperties(v map[string]interface{}) map[string]interface{} {
	props := make(map[string]interface{})
	for name, value := range v {
		if !isReservedField(name) {
			props[name] = value
		}
	}
	return props
}

func isReservedField(name string) bool {
	switch name {
	case schemaAliasesField, schemaDocField, schemaFieldsField, schemaItemsField, schemaNameField,
		schemaLogicalTypeField, schemaPrecisionField, schemaScaleField,
		schemaNamespaceField, schemaSizeField, schemaSymbolsField, schemaTypeField, schemaValuesField:
		return true
	}
	return false
}
