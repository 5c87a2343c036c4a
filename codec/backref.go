package codec

import "math"

// encodeRefs tracks, for the duration of a single Encode call, which
// *Table instances have already been visited and the 1-based ordinal
// each was assigned. It exists only for the lifetime of one encode call,
// the way cache.Cache's current map exists only for one polling cycle.
type encodeRefs struct {
	ordinals map[*Table]int64
	next     int64
}

func newEncodeRefs() *encodeRefs {
	return &encodeRefs{ordinals: make(map[*Table]int64)}
}

// lookup reports the ordinal previously assigned to t, if any.
func (r *encodeRefs) lookup(t *Table) (int64, bool) {
	ord, ok := r.ordinals[t]
	return ord, ok
}

// assign records t as visited for the first time and returns its new
// ordinal. Ordinals are 1-based and assigned in visitation order.
func (r *encodeRefs) assign(t *Table) (int64, error) {
	if r.next == math.MaxInt64 {
		return 0, ErrTooManyTables
	}
	r.next++
	r.ordinals[t] = r.next
	return r.next, nil
}

// decodeRefs is the decode-side counterpart: an ordered sequence of
// *Table instances, indexed by the same 1-based ordinal the encoder
// assigned. Entries are appended before an aggregate's children are
// decoded, so a back-reference to an in-progress (cyclic) table resolves.
type decodeRefs struct {
	tables []*Table
}

// record appends t, assigning it the next ordinal.
func (r *decodeRefs) record(t *Table) {
	r.tables = append(r.tables, t)
}

// resolve returns the table previously recorded under the given 1-based
// ordinal.
func (r *decodeRefs) resolve(ordinal int64) (*Table, error) {
	if ordinal < 1 || ordinal > int64(len(r.tables)) {
		return nil, ErrBadBackref
	}
	return r.tables[ordinal-1], nil
}
