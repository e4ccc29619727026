// Package housing holds the column catalogue and the tabular frame the
// preprocessing pipeline operates on.
package housing

const (
	MedInc     = "MedInc"
	HouseAge   = "HouseAge"
	AveRooms   = "AveRooms"
	AveBedrms  = "AveBedrms"
	Population = "Population"
	AveOccup   = "AveOccup"
	Latitude   = "Latitude"
	Longitude  = "Longitude"

	BedroomRatio      = "BedroomRatio"
	RoomsPerPerson    = "RoomsPerPerson"
	PopulationDensity = "PopulationDensity"
	IncomeAge         = "IncomeAge"
	DistanceToSF      = "DistanceToSF"

	// Target is the label column, present at training time only.
	Target = "MedHouseVal"
)

var rawColumns = []string{MedInc, HouseAge, AveRooms, AveBedrms, Population, AveOccup, Latitude, Longitude}

var engineeredColumns = []string{BedroomRatio, RoomsPerPerson, PopulationDensity, IncomeAge, DistanceToSF}

var cappedColumns = []string{AveRooms, AveBedrms, Population, AveOccup}

// RawColumns returns the eight input features in canonical order.
func RawColumns() []string { return append([]string(nil), rawColumns...) }

// EngineeredColumns returns the derived features in the order they are appended.
func EngineeredColumns() []string { return append([]string(nil), engineeredColumns...) }

// CappedColumns returns the columns clipped to training percentiles by default.
func CappedColumns() []string { return append([]string(nil), cappedColumns...) }

func Descriptions() map[string]string {
	return map[string]string{
		MedInc:            "Median income in block group (in tens of thousands $)",
		HouseAge:          "Median house age in block group (in years)",
		AveRooms:          "Average number of rooms per household",
		AveBedrms:         "Average number of bedrooms per household",
		Population:        "Block group population",
		AveOccup:          "Average number of household members",
		Latitude:          "Block group latitude",
		Longitude:         "Block group longitude",
		BedroomRatio:      "Bedrooms per room",
		RoomsPerPerson:    "Rooms per household member",
		PopulationDensity: "Population per average occupancy",
		IncomeAge:         "Median income times median house age",
		DistanceToSF:      "Euclidean degree distance to San Francisco",
		Target:            "Median house value (in hundreds of thousands $)",
	}
}

// Kind tells where a feature column comes from.
type Kind string

const (
	KindRaw        Kind = "raw"
	KindEngineered Kind = "engineered"
)

// Field is one entry of an ordered feature schema.
type Field struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Schema is the ordered, authoritative list of feature columns.
type Schema []Field

func KindOf(name string) Kind {
	for _, c := range engineeredColumns {
		if c == name {
			return KindEngineered
		}
	}
	return KindRaw
}

func SchemaFor(names []string) Schema {
	out := make(Schema, 0, len(names))
	for _, n := range names {
		out = append(out, Field{Name: n, Kind: KindOf(n)})
	}
	return out
}

func (s Schema) Names() []string {
	out := make([]string, 0, len(s))
	for _, f := range s {
		out = append(out, f.Name)
	}
	return out
}
