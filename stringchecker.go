package avro

// newStringCheckEncoder returns an *Encoder in "key-check" mode: a minimal
// validating sub-encoder whose only job is to accept a String event and
// reject everything else (spec §4.5). It has no cursor and no sink — any
// method other than String fails before either would be touched.
//
// Map entries are validated this way before the key is written directly as
// a framed Avro string (spec §4.2): a MapEncoder runs the key producer's
// value through this encoder first, capturing the string if it announces
// one, instead of re-traversing the key against a schema cursor the way the
// encoder re-traverses every other value (Avro map keys have no schema node
// of their own — they're "implicitly strings", spec §3.1).
func newStringCheckEncoder() *Encoder {
	return &Encoder{stringCheckOnly: true}
}
