package domain

// SearchRecord is the slot-filling target: the details needed to locate
// an airworthiness directive document. Every field is optional; a field
// set on a prior turn (or from recognized entities) is never re-asked.
type SearchRecord struct {
	FileName             string `json:"file_name,omitempty"`
	ADTitle              string `json:"ad_title,omitempty"`
	ADReferenceNumber    string `json:"ad_reference_number,omitempty"`
	AircraftType         string `json:"aircraft_type,omitempty"`
	AircraftSerialNumber string `json:"aircraft_serial_number,omitempty"`
	Holder               string `json:"holder,omitempty"`
	Problem              string `json:"problem,omitempty"`
	EffectiveDate        string `json:"effective_date,omitempty"`
}

// SearchRecordFromEntities seeds a record with the first entity text per
// category, leaving unmatched fields empty.
func SearchRecordFromEntities(r *Recognition) *SearchRecord {
	return &SearchRecord{
		FileName:             r.Entity("FileName"),
		ADTitle:              r.Entity("ADTitle"),
		ADReferenceNumber:    r.Entity("ADReferenceNumber"),
		AircraftType:         r.Entity("AircraftType"),
		AircraftSerialNumber: r.Entity("AircraftSerialNumber"),
		Holder:               r.Entity("Holder"),
		Problem:              r.Entity("Problem"),
		EffectiveDate:        r.Entity("EffectiveDate"),
	}
}
