// Package slotfill resolves which search-record fields still need to be
// asked for, given the information category the user chose.
package slotfill

import (
	"strconv"
	"strings"

	"github.com/flightdeck/adbot/pkg/domain"
)

// Category is one of the search paths a user can pick from the opening
// menu of the search dialog.
type Category string

const (
	CategoryFileName    Category = "File Name"
	CategoryADReference Category = "AD Reference Number"
	CategorySerialTitle Category = "Aircraft Serial Number, AD Title (Problem)"
	CategoryTypeTitle   Category = "Aircraft Type, AD Title (Problem)"
)

// Categories lists the selectable categories in menu order.
func Categories() []Category {
	return []Category{
		CategoryFileName,
		CategoryADReference,
		CategorySerialTitle,
		CategoryTypeTitle,
	}
}

// ParseCategory maps free-form user input to a category. It accepts the
// category title (case-insensitive) or its 1-based menu position.
func ParseCategory(input string) (Category, bool) {
	trimmed := strings.TrimSpace(input)
	if n, err := strconv.Atoi(trimmed); err == nil {
		cats := Categories()
		if n >= 1 && n <= len(cats) {
			return cats[n-1], true
		}
		return "", false
	}
	for _, c := range Categories() {
		if strings.EqualFold(trimmed, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Field names one slot of a search record.
type Field string

const (
	FieldNone                 Field = ""
	FieldFileName             Field = "fileName"
	FieldADTitle              Field = "adTitle"
	FieldADReferenceNumber    Field = "adReferenceNumber"
	FieldAircraftSerialNumber Field = "aircraftSerialNumber"
	FieldAircraftType         Field = "aircraftType"
)

// fieldsFor returns the slots a category requires, in prompting order.
// The two title-based categories skip their primary slot when the
// recognizer already extracted a problem description.
func fieldsFor(rec *domain.SearchRecord, cat Category) []Field {
	switch cat {
	case CategoryFileName:
		return []Field{FieldFileName}
	case CategoryADReference:
		return []Field{FieldADReferenceNumber}
	case CategorySerialTitle:
		if rec.Problem != "" {
			return []Field{FieldADTitle}
		}
		return []Field{FieldAircraftSerialNumber, FieldADTitle}
	case CategoryTypeTitle:
		if rec.Problem != "" {
			return []Field{FieldADTitle}
		}
		return []Field{FieldAircraftType, FieldADTitle}
	}
	return nil
}

// Next returns the first unfilled slot the category still needs. The
// second return is true when every required slot is filled.
func Next(rec *domain.SearchRecord, cat Category) (Field, bool) {
	for _, f := range fieldsFor(rec, cat) {
		if Get(rec, f) == "" {
			return f, false
		}
	}
	return FieldNone, true
}

// Get reads the named slot from the record.
func Get(rec *domain.SearchRecord, f Field) string {
	switch f {
	case FieldFileName:
		return rec.FileName
	case FieldADTitle:
		return rec.ADTitle
	case FieldADReferenceNumber:
		return rec.ADReferenceNumber
	case FieldAircraftSerialNumber:
		return rec.AircraftSerialNumber
	case FieldAircraftType:
		return rec.AircraftType
	}
	return ""
}

// Set writes the named slot on the record.
func Set(rec *domain.SearchRecord, f Field, value string) {
	switch f {
	case FieldFileName:
		rec.FileName = value
	case FieldADTitle:
		rec.ADTitle = value
	case FieldADReferenceNumber:
		rec.ADReferenceNumber = value
	case FieldAircraftSerialNumber:
		rec.AircraftSerialNumber = value
	case FieldAircraftType:
		rec.AircraftType = value
	}
}
