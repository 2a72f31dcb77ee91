package detector

import (
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/koiblue2800/Bot-cotizaciones/internal/quote"
)

// Policy decides, per family, which freshly fetched quotes count as changed.
//
// Detect never fails: an empty or nil snapshot yields no entries and leaves
// the baseline untouched. The returned baseline contains an entry for every
// instrument judged changed or newly observed; instruments absent from the
// snapshot are carried over unmodified. Neither input map is mutated.
type Policy interface {
	Detect(snapshot, lastKnown quote.Snapshot) ([]quote.ChangeEntry, quote.Snapshot)
}

// Absolute marks an instrument changed whenever its field tuple differs by
// value equality from the stored baseline, or when it was never observed.
type Absolute struct{}

// NewAbsolute constructs the absolute-change policy.
func NewAbsolute() *Absolute {
	return &Absolute{}
}

// Detect implements Policy.
func (p *Absolute) Detect(snapshot, lastKnown quote.Snapshot) ([]quote.ChangeEntry, quote.Snapshot) {
	updated := lastKnown.Clone()
	if len(snapshot) == 0 {
		return nil, updated
	}

	var entries []quote.ChangeEntry
	for _, id := range sortedIDs(snapshot) {
		current := snapshot[id]
		previous, seen := lastKnown[id]
		if seen && current.FieldsEqual(previous) {
			continue
		}

		entry := quote.ChangeEntry{
			Instrument: quote.Instrument{ID: id, Label: current.Label},
			Current:    current,
		}
		if seen {
			prev := previous
			entry.Previous = &prev
			entry.Deltas = fieldDeltas(current, previous)
		}

		entries = append(entries, entry)
		updated[id] = current
	}
	return entries, updated
}

// Threshold marks an instrument changed only when one field moved at least
// Pct percent against the stored baseline. The baseline advances only for
// emitted entries, so sub-threshold drift keeps accumulating against the
// last notified value.
type Threshold struct {
	pct   decimal.Decimal
	field string
}

// NewThreshold constructs the threshold-percent policy for a single field.
func NewThreshold(pct decimal.Decimal, field string) *Threshold {
	return &Threshold{pct: pct, field: field}
}

// Detect implements Policy. The comparison is inclusive: a move of exactly
// pct percent counts as changed. A missing or zero previous value is treated
// as a first observation, never as a division fault.
func (p *Threshold) Detect(snapshot, lastKnown quote.Snapshot) ([]quote.ChangeEntry, quote.Snapshot) {
	updated := lastKnown.Clone()
	if len(snapshot) == 0 {
		return nil, updated
	}

	hundred := decimal.NewFromInt(100)
	var entries []quote.ChangeEntry
	for _, id := range sortedIDs(snapshot) {
		current := snapshot[id]
		newValue, hasNew := current.Fields[p.field]
		if !hasNew {
			// No comparison possible; leave the baseline alone.
			continue
		}

		previous, seen := lastKnown[id]
		oldValue, hasOld := previous.Fields[p.field]
		if !seen || !hasOld || oldValue.IsZero() {
			entries = append(entries, quote.ChangeEntry{
				Instrument: quote.Instrument{ID: id, Label: current.Label},
				Current:    current,
			})
			updated[id] = current
			continue
		}

		movePct := newValue.Sub(oldValue).Abs().Div(oldValue.Abs()).Mul(hundred)
		if movePct.LessThan(p.pct) {
			continue
		}

		prev := previous
		entries = append(entries, quote.ChangeEntry{
			Instrument: quote.Instrument{ID: id, Label: current.Label},
			Previous:   &prev,
			Current:    current,
			Deltas:     fieldDeltas(current, previous),
		})
		updated[id] = current
	}
	return entries, updated
}

func sortedIDs(snapshot quote.Snapshot) []string {
	ids := lo.Keys(snapshot)
	sort.Strings(ids)
	return ids
}

func fieldDeltas(current, previous quote.Quote) map[string]decimal.Decimal {
	deltas := make(map[string]decimal.Decimal, len(current.Fields))
	for name, value := range current.Fields {
		if prevValue, ok := previous.Fields[name]; ok {
			deltas[name] = value.Sub(prevValue)
		}
	}
	return deltas
}

var (
	_ Policy = (*Absolute)(nil)
	_ Policy = (*Threshold)(nil)
)
