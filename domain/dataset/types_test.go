package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func regionSales(sales ...interface{}) *Dataset {
	fields := []Field{
		{Name: "region", Type: TypeNominal},
		{Name: "sales", Type: TypeQuantitative},
	}
	records := make([]Record, len(sales))
	regions := []string{"north", "south", "east", "west"}
	for i, v := range sales {
		records[i] = Record{"region": regions[i%len(regions)], "sales": v}
	}
	return New("d", fields, records)
}

func TestFingerprintFollowsContent(t *testing.T) {
	a := regionSales(10.0, 20.0, 30.0)
	assert.Equal(t, a.Fingerprint(), regionSales(10.0, 20.0, 30.0).Fingerprint())

	// same name, fields and record count
	b := regionSales(10.0, 20.0, 31.0)
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	missing := regionSales(10.0, nil, 30.0)
	assert.NotEqual(t, a.Fingerprint(), missing.Fingerprint())
	assert.Equal(t, missing.Fingerprint(), regionSales(10.0, "", 30.0).Fingerprint(), "blank and nil are both missing")
}

func TestFingerprintFollowsDeclarations(t *testing.T) {
	a := regionSales(1.0, 2.0)
	b := New(a.Name, []Field{{Name: "region", Type: TypeOrdinal}, {Name: "sales", Type: TypeQuantitative}}, a.Records)
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestHasFieldLooksAtRecords(t *testing.T) {
	ds := New("d",
		[]Field{{Name: "region", Type: TypeNominal}, {Name: "bogus", Type: TypeNominal}},
		[]Record{{"region": "north", "note": nil}},
	)

	assert.True(t, ds.HasField("region"))
	assert.True(t, ds.HasField("note"), "a nil cell still carries the field")
	assert.False(t, ds.HasField("bogus"), "a declaration alone is not data")
}

func TestContinuousLike(t *testing.T) {
	assert.True(t, TypeTemporal.ContinuousLike())
	assert.True(t, TypeOrdinal.ContinuousLike())
	assert.False(t, TypeNominal.ContinuousLike())
	assert.False(t, TypeQuantitative.ContinuousLike())
}
