package gatt

import "github.com/leso-kn/ble"

// Database is an ordered collection of non-overlapping attribute groupings
// within [rangeStart, rangeEnd], per spec.md §3/§4.4.
type Database struct {
	rangeStart ble.Handle
	rangeEnd   ble.Handle
	groupings  []*AttributeGrouping // ordered by StartHandle, never overlapping
}

// NewDatabase creates an empty database spanning [rangeStart, rangeEnd].
func NewDatabase(rangeStart, rangeEnd ble.Handle) *Database {
	return &Database{rangeStart: rangeStart, rangeEnd: rangeEnd}
}

// NewGrouping reserves attrCount+1 contiguous handles for a new grouping of
// typ with declValue as its declaration value, and activates it. Placement
// is first-fit by lowest available handle (spec.md testable property 5):
// the head gap, then each interior gap, then the tail gap, in ascending
// handle order, whichever is first to fit. Returns nil if no gap fits.
func (db *Database) NewGrouping(typ ble.UUID, attrCount int, declValue []byte) *AttributeGrouping {
	need := attrCount + 1

	for i := 0; i <= len(db.groupings); i++ {
		var gapStart ble.Handle
		if i == 0 {
			gapStart = db.rangeStart
		} else {
			gapStart = db.groupings[i-1].endHandle + 1
		}

		var gapEndExclusive int // one past the last usable handle in this gap, as an int to avoid uint16 wraparound
		if i == len(db.groupings) {
			gapEndExclusive = int(db.rangeEnd) + 1
		} else {
			gapEndExclusive = int(db.groupings[i].startHandle)
		}

		size := gapEndExclusive - int(gapStart)
		if size < need {
			continue
		}

		g := newGrouping(typ, gapStart, attrCount, declValue)
		g.active = true
		db.groupings = append(db.groupings, nil)
		copy(db.groupings[i+1:], db.groupings[i:])
		db.groupings[i] = g
		return g
	}
	return nil
}

// RemoveGrouping removes the grouping starting at startHandle, if any, and
// reports whether one was found.
func (db *Database) RemoveGrouping(startHandle ble.Handle) bool {
	i, ok := db.search(startHandle)
	if !ok {
		return false
	}
	db.groupings = append(db.groupings[:i], db.groupings[i+1:]...)
	return true
}

// search binary-searches for the grouping whose StartHandle equals h.
func (db *Database) search(h ble.Handle) (int, bool) {
	lo, hi := 0, len(db.groupings)
	for lo < hi {
		mid := (lo + hi) / 2
		if db.groupings[mid].startHandle < h {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(db.groupings) && db.groupings[lo].startHandle == h {
		return lo, true
	}
	return lo, false
}

// groupingContaining binary-searches for the grouping whose [start, end]
// contains handle.
func (db *Database) groupingContaining(handle ble.Handle) (*AttributeGrouping, int) {
	lo, hi := 0, len(db.groupings)
	for lo < hi {
		mid := (lo + hi) / 2
		g := db.groupings[mid]
		switch {
		case handle < g.startHandle:
			hi = mid
		case handle > g.endHandle:
			lo = mid + 1
		default:
			return g, mid
		}
	}
	return nil, -1
}

// FindAttribute returns the attribute at handle, or nil if handle does not
// lie within an active, complete grouping.
func (db *Database) FindAttribute(handle ble.Handle) *Attribute {
	g, _ := db.groupingContaining(handle)
	if g == nil || !g.Active() || !g.Complete() {
		return nil
	}
	return g.attributes[handle-g.startHandle]
}

// Groupings returns the database's groupings in handle order. Callers must
// not retain the slice across a mutation.
func (db *Database) Groupings() []*AttributeGrouping { return db.groupings }
