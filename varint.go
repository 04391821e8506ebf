package avro

// zigzag encodes a signed 64-bit integer using Avro's zigzag transform
// (spec GLOSSARY: "map signed n to unsigned (n<<1) ^ (n>>63)") so that
// small-magnitude negative numbers stay small in the unsigned varint below.
func zigzag(n int64) uint64 {
	return uint64(n<<1) ^ uint64(n>>63)
}

// appendVarint appends the base-128 little-endian varint encoding of u to
// buf, matching the `integer_encoding` crate's VarInt convention the
// original reference encoder is built on (continuation bit set on every
// byte but the last).
func appendVarint(buf []byte, u uint64) []byte {
	for u >= 0x80 {
		buf = append(buf, byte(u)|0x80)
		u >>= 7
	}
	return append(buf, byte(u))
}

// appendZigzagVarint appends the zigzag varint encoding of a signed integer,
// the wire form Avro uses for every Int/Long value (spec §4.2).
func appendZigzagVarint(buf []byte, n int64) []byte {
	return appendVarint(buf, zigzag(n))
}
