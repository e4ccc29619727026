// Package housingtest builds deterministic housing frames for tests.
package housingtest

import (
	"math/rand/v2"

	"github.com/yungbote/housing-predictor/internal/housing"
)

// Sample is the block group used in examples and API docs.
func Sample() housing.Record {
	return housing.Record{
		housing.MedInc:     8.3,
		housing.HouseAge:   41.0,
		housing.AveRooms:   6.98,
		housing.AveBedrms:  1.02,
		housing.Population: 322.0,
		housing.AveOccup:   2.55,
		housing.Latitude:   37.88,
		housing.Longitude:  -122.23,
	}
}

// Records returns n synthetic block groups with plausible ranges. When
// withTarget is set each record also carries a target loosely tied to income.
func Records(n int, seed uint64, withTarget bool) []housing.Record {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]housing.Record, n)
	for i := range out {
		rooms := 3 + rng.Float64()*5
		if i%37 == 0 {
			rooms *= 6
		}
		occup := 1.5 + rng.Float64()*3
		rec := housing.Record{
			housing.MedInc:     0.5 + rng.Float64()*12,
			housing.HouseAge:   float64(1 + rng.IntN(52)),
			housing.AveRooms:   rooms,
			housing.AveBedrms:  0.8 + rng.Float64()*0.6,
			housing.Population: 50 + rng.Float64()*3000,
			housing.AveOccup:   occup,
			housing.Latitude:   32.5 + rng.Float64()*9,
			housing.Longitude:  -124.3 + rng.Float64()*10,
		}
		if withTarget {
			rec[housing.Target] = 0.3 + 0.4*rec[housing.MedInc] + rng.NormFloat64()*0.2
		}
		out[i] = rec
	}
	return out
}

// Frame is Records as a frame; it panics on construction errors.
func Frame(n int, seed uint64, withTarget bool) *housing.Frame {
	f, err := housing.FromRecords(Records(n, seed, withTarget))
	if err != nil {
		panic(err)
	}
	return f
}
