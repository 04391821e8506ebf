// Package avroreflect adapts an arbitrary Go value — struct, slice, array,
// map, pointer, or primitive — into the avro package's Value producer
// protocol using reflection, so callers can encode plain Go data without
// hand-writing an EncodeAvro method for every type.
//
// Struct field names are matched against Avro record field names using an
// `avro:"..."` tag when present, falling back to a snake_case conversion of
// the Go field name via github.com/ettle/strcase (the same convention
// go-avro's own examples/data_file/data_file.go documents: "Fields to map
// should be exported, field names specified", and the same tag name
// hamba/avro uses). Field-name resolution for a given reflect.Type is
// computed once and cached, matching the compile-once-encode-many
// discipline the core schema compiler follows.
package avroreflect

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/ettle/strcase"

	"github.com/avrocore/avro"
)

// Wrap adapts v into a Value. v is typically a pointer to or value of a Go
// struct, but any reflectable Go value is accepted.
func Wrap(v interface{}) avro.Value {
	return reflectValue{v}
}

type reflectValue struct{ v interface{} }

func (r reflectValue) EncodeAvro(e *avro.Encoder) error {
	if r.v == nil {
		return e.Null()
	}
	return encodeReflect(e, reflect.ValueOf(r.v))
}

func encodeReflect(e *avro.Encoder, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return e.Null()
		}
		return e.Some(reflectValue{rv.Elem().Interface()})
	case reflect.Bool:
		return e.Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return e.Int(int32(rv.Int()))
	case reflect.Int64:
		if d, ok := rv.Interface().(time.Duration); ok {
			return e.Long(int64(d))
		}
		return e.Long(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return e.Int(int32(rv.Uint()))
	case reflect.Uint64:
		return e.Long(int64(rv.Uint()))
	case reflect.Float32:
		return e.Float(float32(rv.Float()))
	case reflect.Float64:
		return e.Double(rv.Float())
	case reflect.String:
		return e.String(rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return e.Bytes(rv.Bytes())
		}
		return encodeSlice(e, rv)
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			buf := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(buf), rv)
			return e.Bytes(buf)
		}
		return encodeSlice(e, rv)
	case reflect.Map:
		return encodeMap(e, rv)
	case reflect.Struct:
		if t, ok := rv.Interface().(time.Time); ok {
			return encodeTime(e, t)
		}
		return encodeStruct(e, rv)
	default:
		return fmt.Errorf("avroreflect: unsupported kind %s", rv.Kind())
	}
}

func encodeSlice(e *avro.Encoder, rv reflect.Value) error {
	n := rv.Len()
	return e.Seq(n, func(s *avro.SeqEncoder) error {
		for i := 0; i < n; i++ {
			if err := s.Element(reflectValue{rv.Index(i).Interface()}); err != nil {
				return err
			}
		}
		return nil
	})
}

func encodeMap(e *avro.Encoder, rv reflect.Value) error {
	if rv.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("avroreflect: map keys must be strings, got %s", rv.Type().Key())
	}
	keys := rv.MapKeys()
	return e.Map(len(keys), func(m *avro.MapEncoder) error {
		for _, k := range keys {
			val := rv.MapIndex(k)
			if err := m.Entry(avro.StringKey(k.String()), reflectValue{val.Interface()}); err != nil {
				return err
			}
		}
		return nil
	})
}

// encodeTime renders a time.Time against whichever logical-time kind the
// cursor expects (spec §3.1's Date/TimeMillis/TimeMicros/TimestampMillis/
// TimestampMicros leaves all ride on Int or Long on the wire).
func encodeTime(e *avro.Encoder, t time.Time) error {
	schema, err := e.Schema()
	if err != nil {
		return err
	}
	kind := schema.Kind()
	if u, ok := schema.(*avro.UnionSSchema); ok {
		for _, k := range []avro.SchemaKind{
			avro.KindTimestampMicros, avro.KindTimestampMillis,
			avro.KindDate, avro.KindTimeMicros, avro.KindTimeMillis,
			avro.KindLong, avro.KindInt,
		} {
			if _, ok := u.Dispatch[k]; ok {
				kind = k
				break
			}
		}
	}
	switch kind {
	case avro.KindDate:
		days := t.UTC().Unix() / 86400
		return e.Int(int32(days))
	case avro.KindTimeMillis:
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return e.Int(int32(t.Sub(midnight).Milliseconds()))
	case avro.KindTimeMicros:
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return e.Long(t.Sub(midnight).Microseconds())
	case avro.KindTimestampMillis:
		return e.Long(t.UnixMilli())
	default:
		return e.Long(t.UnixMicro())
	}
}

// structInfo is the cached, once-per-type result of matching a Go struct's
// fields against Avro record field names.
type structInfo struct {
	indexByName map[string]int
}

var structCache sync.Map // reflect.Type -> *structInfo

func structInfoFor(rv reflect.Value) *structInfo {
	t := rv.Type()
	if cached, ok := structCache.Load(t); ok {
		return cached.(*structInfo)
	}
	info := &structInfo{indexByName: make(map[string]int)}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		name := f.Tag.Get("avro")
		if name == "" {
			name = strcase.ToSnake(f.Name)
		}
		info.indexByName[name] = i
	}
	structCache.Store(t, info)
	return info
}

func encodeStruct(e *avro.Encoder, rv reflect.Value) error {
	rec, err := recordSchema(e)
	if err != nil {
		return err
	}
	info := structInfoFor(rv)
	return e.Struct(rec.Name, func(s *avro.StructEncoder) error {
		for _, f := range rec.Fields {
			idx, ok := info.indexByName[f.Name]
			if !ok {
				return fmt.Errorf("avroreflect: %s has no field matching %q", rv.Type(), f.Name)
			}
			if err := s.Field(f.Name, reflectValue{rv.Field(idx).Interface()}); err != nil {
				return err
			}
		}
		return nil
	})
}

func recordSchema(e *avro.Encoder) (*avro.RecordSSchema, error) {
	schema, err := e.Schema()
	if err != nil {
		return nil, err
	}
	if u, ok := schema.(*avro.UnionSSchema); ok {
		if idx, ok := u.Dispatch[avro.KindRecord]; ok {
			return u.Variants[idx].(*avro.RecordSSchema), nil
		}
		return nil, fmt.Errorf("avroreflect: no record variant available in union")
	}
	rec, ok := schema.(*avro.RecordSSchema)
	if !ok {
		return nil, fmt.Errorf("avroreflect: expected record, schema is %s", schema.Kind())
	}
	return rec, nil
}
