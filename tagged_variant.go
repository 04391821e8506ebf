package avro

// writeTag implements spec §4.3: interpret rec as a two-field tag envelope
// {type: string-like, value: T}, write variant into the first field, and
// return the second field's schema for the payload to be encoded against.
func (e *Encoder) writeTag(rec *RecordSSchema, variant string) (SSchema, error) {
	if len(rec.Fields) != 2 || rec.Fields[0].Name != "type" || rec.Fields[1].Name != "value" {
		return nil, customf("tag record must have two fields: \"type\" and \"value\"")
	}
	saved := e.cursor
	e.cursor = rec.Fields[0].Schema
	err := e.String(variant)
	e.cursor = saved
	if err != nil {
		return nil, err
	}
	return rec.Fields[1].Schema, nil
}
