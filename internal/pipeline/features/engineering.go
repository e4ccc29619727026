// Package features derives the engineered housing columns from raw inputs.
package features

import (
	"math"

	"github.com/yungbote/housing-predictor/internal/housing"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

// San Francisco city hall, the reference point for DistanceToSF.
const (
	SFLatitude  = 37.7749
	SFLongitude = -122.4194
)

type derivation struct {
	name string
	fn   func(r row) float64
}

type row struct {
	medInc, houseAge, aveRooms, aveBedrms, population, aveOccup, lat, lon float64
}

// Zero denominators are not guarded: they yield ±Inf or NaN and callers
// decide what to do with them.
var derivations = []derivation{
	{housing.BedroomRatio, func(r row) float64 { return r.aveBedrms / r.aveRooms }},
	{housing.RoomsPerPerson, func(r row) float64 { return r.aveRooms / r.aveOccup }},
	{housing.PopulationDensity, func(r row) float64 { return r.population / r.aveOccup }},
	{housing.IncomeAge, func(r row) float64 { return r.medInc * r.houseAge }},
	{housing.DistanceToSF, func(r row) float64 {
		dLat := r.lat - SFLatitude
		dLon := r.lon - SFLongitude
		return math.Sqrt(dLat*dLat + dLon*dLon)
	}},
}

// Augment returns a copy of f with the five engineered columns appended after
// the existing ones. Columns that already exist are recomputed in place. The
// input frame is never modified.
func Augment(f *housing.Frame) (*housing.Frame, error) {
	if missing := f.Missing(housing.RawColumns()); len(missing) > 0 {
		return nil, pkgerrors.MissingColumns("augment", missing...)
	}
	col := func(n string) []float64 {
		c, _ := f.Column(n)
		return c
	}
	medInc, houseAge := col(housing.MedInc), col(housing.HouseAge)
	aveRooms, aveBedrms := col(housing.AveRooms), col(housing.AveBedrms)
	population, aveOccup := col(housing.Population), col(housing.AveOccup)
	lat, lon := col(housing.Latitude), col(housing.Longitude)

	derived := make([][]float64, len(derivations))
	for j := range derived {
		derived[j] = make([]float64, f.Len())
	}
	for i := 0; i < f.Len(); i++ {
		r := row{
			medInc: medInc[i], houseAge: houseAge[i],
			aveRooms: aveRooms[i], aveBedrms: aveBedrms[i],
			population: population[i], aveOccup: aveOccup[i],
			lat: lat[i], lon: lon[i],
		}
		for j, d := range derivations {
			derived[j][i] = d.fn(r)
		}
	}

	out := f.Clone()
	for j, d := range derivations {
		if err := out.Set(d.name, derived[j]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AugmentRecord engineers a single record through the same path as Augment.
func AugmentRecord(rec housing.Record) (housing.Record, error) {
	f, err := housing.FromRecords([]housing.Record{rec})
	if err != nil {
		return nil, err
	}
	out, err := Augment(f)
	if err != nil {
		return nil, err
	}
	return out.Row(0), nil
}
