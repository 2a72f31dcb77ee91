package quote

import (
	"time"

	"github.com/shopspring/decimal"
)

// Family identifies a logical group of monitored instruments sharing one
// polling cadence and one change policy.
type Family string

const (
	FamilyDolar       Family = "dolar"
	FamilyStablecoins Family = "stablecoins"
	FamilyTrending    Family = "trending"
)

// Instrument is one tracked quantity within a family.
type Instrument struct {
	ID    string
	Label string
}

// Quote is a single observation of an instrument. Created fresh on every
// poll and never mutated afterwards.
type Quote struct {
	Instrument string
	Label      string
	Fields     map[string]decimal.Decimal
	ObservedAt time.Time
}

// FieldsEqual reports value equality of the full field tuple.
func (q Quote) FieldsEqual(other Quote) bool {
	if len(q.Fields) != len(other.Fields) {
		return false
	}
	for name, value := range q.Fields {
		otherValue, ok := other.Fields[name]
		if !ok || !value.Equal(otherValue) {
			return false
		}
	}
	return true
}

// Snapshot maps instrument ids to their freshest quotes.
type Snapshot map[string]Quote

// Clone returns a copy of the snapshot that can be mutated independently.
func (s Snapshot) Clone() Snapshot {
	cloned := make(Snapshot, len(s))
	for id, q := range s {
		cloned[id] = q
	}
	return cloned
}

// ChangeEntry is one accepted change, transient between detection and
// message rendering. Previous is nil on first observation.
type ChangeEntry struct {
	Instrument Instrument
	Previous   *Quote
	Current    Quote
	Deltas     map[string]decimal.Decimal
}

// TrendingCoin is one row of the daily trending digest.
type TrendingCoin struct {
	Rank   int
	Name   string
	Symbol string
}
