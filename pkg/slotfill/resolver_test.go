package slotfill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightdeck/adbot/pkg/domain"
	"github.com/flightdeck/adbot/pkg/slotfill"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input string
		want  slotfill.Category
		ok    bool
	}{
		{"File Name", slotfill.CategoryFileName, true},
		{"file name", slotfill.CategoryFileName, true},
		{"1", slotfill.CategoryFileName, true},
		{"2", slotfill.CategoryADReference, true},
		{"3", slotfill.CategorySerialTitle, true},
		{"4", slotfill.CategoryTypeTitle, true},
		{" AD Reference Number ", slotfill.CategoryADReference, true},
		{"5", "", false},
		{"0", "", false},
		{"something else", "", false},
	}
	for _, tc := range tests {
		got, ok := slotfill.ParseCategory(tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestNextSingleSlotCategories(t *testing.T) {
	rec := &domain.SearchRecord{}

	f, done := slotfill.Next(rec, slotfill.CategoryFileName)
	assert.False(t, done)
	assert.Equal(t, slotfill.FieldFileName, f)

	rec.FileName = "bae 146-140"
	_, done = slotfill.Next(rec, slotfill.CategoryFileName)
	assert.True(t, done)

	f, done = slotfill.Next(rec, slotfill.CategoryADReference)
	assert.False(t, done)
	assert.Equal(t, slotfill.FieldADReferenceNumber, f)
}

func TestNextSkipsTitleWhenProblemKnown(t *testing.T) {
	rec := &domain.SearchRecord{Problem: "corrosion on wing spar"}

	f, done := slotfill.Next(rec, slotfill.CategorySerialTitle)
	assert.False(t, done)
	assert.Equal(t, slotfill.FieldADTitle, f)

	rec.ADTitle = "AD 2020-14-07"
	_, done = slotfill.Next(rec, slotfill.CategorySerialTitle)
	assert.True(t, done)
}

func TestNextAsksSlotsInOrder(t *testing.T) {
	rec := &domain.SearchRecord{}

	f, done := slotfill.Next(rec, slotfill.CategoryTypeTitle)
	require.False(t, done)
	assert.Equal(t, slotfill.FieldAircraftType, f)

	slotfill.Set(rec, f, "Boeing 737")
	f, done = slotfill.Next(rec, slotfill.CategoryTypeTitle)
	require.False(t, done)
	assert.Equal(t, slotfill.FieldADTitle, f)

	slotfill.Set(rec, f, "AD 2019-03-11")
	_, done = slotfill.Next(rec, slotfill.CategoryTypeTitle)
	assert.True(t, done)
}

func TestNeverRepromptsFilledSlots(t *testing.T) {
	rec := &domain.SearchRecord{AircraftSerialNumber: "SN-1001"}

	f, done := slotfill.Next(rec, slotfill.CategorySerialTitle)
	require.False(t, done)
	assert.Equal(t, slotfill.FieldADTitle, f)
}

func TestGetSetRoundTrip(t *testing.T) {
	fields := []slotfill.Field{
		slotfill.FieldFileName,
		slotfill.FieldADTitle,
		slotfill.FieldADReferenceNumber,
		slotfill.FieldAircraftSerialNumber,
		slotfill.FieldAircraftType,
	}
	rec := &domain.SearchRecord{}
	for _, f := range fields {
		slotfill.Set(rec, f, "value for "+string(f))
		assert.Equal(t, "value for "+string(f), slotfill.Get(rec, f))
	}
}
