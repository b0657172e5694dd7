package gatt

import "github.com/leso-kn/ble"

// Iterator walks a Database over a handle range, optionally filtered by
// UUID and optionally restricted to grouping declarations only, per
// spec.md §4.4. Any mutation of the database invalidates live iterators —
// it holds indices into the groupings slice, not a copy.
type Iterator struct {
	db         *Database
	end        ble.Handle
	typeFilter ble.UUID
	hasFilter  bool
	groupsOnly bool

	groupIdx int
	attrIdx  int
}

// Iterator returns an Iterator over attributes (or, if groupsOnly, group
// declarations) whose handle lies in [start, end], restricted to typeFilter
// when hasFilter is true.
func (db *Database) Iterator(start, end ble.Handle, typeFilter ble.UUID, hasFilter bool, groupsOnly bool) *Iterator {
	it := &Iterator{
		db:         db,
		end:        end,
		typeFilter: typeFilter,
		hasFilter:  hasFilter,
		groupsOnly: groupsOnly,
	}

	lo, hi := 0, len(db.groupings)
	for lo < hi {
		mid := (lo + hi) / 2
		if db.groupings[mid].endHandle < start {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	it.groupIdx = lo

	if !groupsOnly && it.groupIdx < len(db.groupings) {
		g := db.groupings[it.groupIdx]
		if start > g.startHandle {
			it.attrIdx = int(start - g.startHandle)
		}
	}
	return it
}

// Next advances the iterator and returns the next matching attribute, or
// (nil, false) once the range is exhausted.
func (it *Iterator) Next() (*Attribute, bool) {
	for it.groupIdx < len(it.db.groupings) {
		g := it.db.groupings[it.groupIdx]
		if g.startHandle > it.end {
			return nil, false
		}
		if !g.Active() || !g.Complete() {
			it.groupIdx++
			it.attrIdx = 0
			continue
		}

		if it.groupsOnly {
			it.groupIdx++
			if it.hasFilter && !g.typ.Equal(it.typeFilter) {
				continue
			}
			return g.Declaration(), true
		}

		for it.attrIdx < len(g.attributes) {
			h := g.startHandle + ble.Handle(it.attrIdx)
			if h > it.end {
				return nil, false
			}
			a := g.attributes[it.attrIdx]
			it.attrIdx++
			if it.hasFilter && !a.typ.Equal(it.typeFilter) {
				continue
			}
			return a, true
		}
		it.groupIdx++
		it.attrIdx = 0
	}
	return nil, false
}
