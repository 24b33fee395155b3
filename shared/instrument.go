package shared

// Instrument represents a tracked index instrument and its provider
// routing attributes.
type Instrument struct {
	// Name is the instrument identifier.
	Name string
	// SecurityID is the provider security id for the instrument.
	SecurityID string
	// ExchangeSegment is the provider exchange segment for the instrument.
	ExchangeSegment string
	// BasePrice is a plausible price mark for the instrument, used by the
	// synthetic series generator.
	BasePrice float64
}

// instrumentCatalog is the static set of known index instruments.
var instrumentCatalog = map[string]Instrument{
	"NIFTY":     {Name: "NIFTY", SecurityID: "13", ExchangeSegment: "IDX_I", BasePrice: 24000},
	"BANKNIFTY": {Name: "BANKNIFTY", SecurityID: "25", ExchangeSegment: "IDX_I", BasePrice: 51000},
	"SENSEX":    {Name: "SENSEX", SecurityID: "51", ExchangeSegment: "IDX_I", BasePrice: 80000},
}

// FindInstrument returns the catalog entry for the provided instrument name.
func FindInstrument(name string) (Instrument, error) {
	instrument, ok := instrumentCatalog[name]
	if !ok {
		return Instrument{}, NewMarketError(UnknownInstrument,
			"unknown instrument: "+name, nil)
	}

	return instrument, nil
}

// KnownInstruments returns the names of all catalogued instruments.
func KnownInstruments() []string {
	names := make([]string, 0, len(instrumentCatalog))
	for name := range instrumentCatalog {
		names = append(names, name)
	}

	return names
}
