package avro

import (
	"encoding/binary"
	"math"
)

func (e *Encoder) write(b []byte) error {
	_, err := e.w.Write(b)
	return err
}

// writeVarint writes the zigzag varint encoding of a signed integer — the
// wire form of every Int/Long value (spec §4.2).
func (e *Encoder) writeVarint(n int64) error {
	e.scratch = appendZigzagVarint(e.scratch[:0], n)
	return e.write(e.scratch)
}

// writeLength writes a plain (non-zigzag... it still is zigzag, lengths are
// never negative but Avro still encodes counts with the same signed zigzag
// varint used everywhere else) block/string/bytes length prefix.
func (e *Encoder) writeLength(n int) error {
	return e.writeVarint(int64(n))
}

// writeFramedBytes writes a zigzag varint length prefix followed by the raw
// bytes, the shared wire shape of Bytes and String (spec §4.2).
func (e *Encoder) writeFramedBytes(b []byte) error {
	if err := e.writeLength(len(b)); err != nil {
		return err
	}
	return e.write(b)
}

func (e *Encoder) writeBool(v bool) error {
	if v {
		return e.write([]byte{1})
	}
	return e.write([]byte{0})
}

func (e *Encoder) writeFloat32(v float32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	return e.write(buf[:])
}

func (e *Encoder) writeFloat64(v float64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	return e.write(buf[:])
}

// writeBytesLike emits a byte-string event's payload against whatever target
// schema the cursor resolved to: Bytes/Uuid are length-framed, Fixed is
// size-checked and unframed, and Decimal recurses into its inner schema
// verbatim (spec §4.2 "Decimal: encode the inner payload... verbatim").
func (e *Encoder) writeBytesLike(target SSchema, v []byte) error {
	switch t := target.(type) {
	case *BytesSSchema, *UuidSSchema:
		return e.writeFramedBytes(v)
	case *FixedSSchema:
		if len(v) != t.Size {
			return customf("expected fixed %d, found %d", t.Size, len(v))
		}
		return e.write(v)
	case *DecimalSSchema:
		return e.writeBytesLike(t.Inner, v)
	default:
		return customf("internal error: unexpected bytes target %s", target.Kind())
	}
}
