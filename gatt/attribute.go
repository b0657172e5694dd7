package gatt

import "github.com/leso-kn/ble"

// ReadResult is delivered to a ReadSink exactly once: either a value or an
// ATT error code, never both.
type ReadResult struct {
	Value []byte
	Err   ble.ErrorCode
}

// ReadSink completes one ReadAsync call. May be invoked synchronously
// (inside the ReadHandler call) or later, but exactly once.
type ReadSink func(ReadResult)

// ReadHandler serves a dynamic attribute read from peer at offset.
type ReadHandler func(peer ble.Addr, offset int, sink ReadSink)

// WriteResult is delivered to a WriteSink exactly once.
type WriteResult struct {
	Err ble.ErrorCode
}

// WriteSink completes one WriteAsync call, exactly once.
type WriteSink func(WriteResult)

// WriteHandler serves a dynamic attribute write from peer at offset.
type WriteHandler func(peer ble.Addr, offset int, value []byte, sink WriteSink)

// Attribute is one handle's worth of the database: either a static value
// (read-only from the protocol's perspective) or a dynamic one served by
// read/write handlers, per spec.md §3's Attribute invariants.
type Attribute struct {
	handle ble.Handle
	typ    ble.UUID

	readReqs  AccessRequirements
	writeReqs AccessRequirements

	value    []byte
	hasValue bool

	readHandler  ReadHandler
	writeHandler WriteHandler

	grouping *AttributeGrouping
}

// Handle returns the attribute's handle within its database.
func (a *Attribute) Handle() ble.Handle { return a.handle }

// Type returns the attribute's UUID.
func (a *Attribute) Type() ble.UUID { return a.typ }

// ReadRequirements returns the access rules governing a read of this attribute.
func (a *Attribute) ReadRequirements() AccessRequirements { return a.readReqs }

// WriteRequirements returns the access rules governing a write of this attribute.
func (a *Attribute) WriteRequirements() AccessRequirements { return a.writeReqs }

// Grouping returns the grouping this attribute belongs to.
func (a *Attribute) Grouping() *AttributeGrouping { return a.grouping }

// SetValue installs bytes as a's static value. Fails if writes aren't
// denied (a static value may not coexist with a writable attribute — see
// spec.md §3), if a value (or handler) is already installed, or if bytes
// is empty or exceeds ble.MaxAttributeValueLength.
func (a *Attribute) SetValue(bytes []byte) bool {
	if a.writeReqs.Allowed {
		return false
	}
	if a.hasValue || a.readHandler != nil || a.writeHandler != nil {
		return false
	}
	if len(bytes) == 0 || len(bytes) > ble.MaxAttributeValueLength {
		return false
	}
	a.value = append([]byte(nil), bytes...)
	a.hasValue = true
	return true
}

// SetReadHandler installs h as a's dynamic read handler.
func (a *Attribute) SetReadHandler(reqs AccessRequirements, h ReadHandler) {
	a.readReqs = reqs
	a.readHandler = h
}

// SetWriteHandler installs h as a's dynamic write handler.
func (a *Attribute) SetWriteHandler(reqs AccessRequirements, h WriteHandler) {
	a.writeReqs = reqs
	a.writeHandler = h
}

// StaticValue returns a's installed static value and whether one exists.
func (a *Attribute) StaticValue() ([]byte, bool) { return a.value, a.hasValue }

// ReadAsync dispatches a read of a at offset. It returns false immediately,
// without invoking sink, if a has no dynamic read configured or if link
// does not satisfy a's read requirements (callers that already ran
// CheckAccess themselves may pass a permissive link to skip the recheck).
func (a *Attribute) ReadAsync(peer ble.Addr, offset int, link ble.LinkSecurity, sink ReadSink) bool {
	if a.readHandler == nil {
		return false
	}
	if CheckAccess(a.readReqs, link, OpRead) != ble.NoError {
		return false
	}
	a.readHandler(peer, offset, sink)
	return true
}

// WriteAsync dispatches a write of value at offset to a. Symmetric with
// ReadAsync.
func (a *Attribute) WriteAsync(peer ble.Addr, offset int, value []byte, link ble.LinkSecurity, sink WriteSink) bool {
	if a.writeHandler == nil {
		return false
	}
	if CheckAccess(a.writeReqs, link, OpWrite) != ble.NoError {
		return false
	}
	a.writeHandler(peer, offset, value, sink)
	return true
}

// AttributeGrouping is a contiguous handle range owning a slice of
// attributes, the first of which is its declaration (spec.md §3). It is
// complete once every reserved handle has an attribute, and active once
// explicitly activated by the database.
type AttributeGrouping struct {
	typ         ble.UUID
	startHandle ble.Handle
	endHandle   ble.Handle
	attributes  []*Attribute
	active      bool
}

// Type returns the grouping's declared type (the declaration attribute's type).
func (g *AttributeGrouping) Type() ble.UUID { return g.typ }

// StartHandle returns the grouping's first (declaration) handle.
func (g *AttributeGrouping) StartHandle() ble.Handle { return g.startHandle }

// EndHandle returns the grouping's last reserved handle.
func (g *AttributeGrouping) EndHandle() ble.Handle { return g.endHandle }

// Complete reports whether every reserved handle has an attribute.
func (g *AttributeGrouping) Complete() bool {
	return ble.Handle(len(g.attributes)) == g.endHandle-g.startHandle+1
}

// Active reports whether the grouping has been activated. An inactive or
// incomplete grouping is invisible to FindAttribute and Iterator.
func (g *AttributeGrouping) Active() bool { return g.active }

// Declaration returns the grouping's declaration attribute (its first).
func (g *AttributeGrouping) Declaration() *Attribute { return g.attributes[0] }

// Attributes returns the grouping's attributes in handle order, starting
// with the declaration.
func (g *AttributeGrouping) Attributes() []*Attribute { return g.attributes }

// newGrouping reserves [start, start+attrCount] inclusive and installs the
// declaration attribute at start: a static, read-only, no-security value.
// Used by Database.NewGrouping once it has chosen a placement.
func newGrouping(typ ble.UUID, start ble.Handle, attrCount int, declValue []byte) *AttributeGrouping {
	g := &AttributeGrouping{
		typ:         typ,
		startHandle: start,
		endHandle:   start + ble.Handle(attrCount),
	}
	decl := &Attribute{
		handle:    start,
		typ:       typ,
		readReqs:  AccessRequirements{Allowed: true},
		writeReqs: AccessRequirements{},
		grouping:  g,
	}
	decl.value = append([]byte(nil), declValue...)
	decl.hasValue = true
	g.attributes = append(g.attributes, decl)
	return g
}

// AddAttribute appends a new attribute of typ at the next free handle in
// g, with the given access requirements. It returns nil if g is already
// complete.
func (g *AttributeGrouping) AddAttribute(typ ble.UUID, readReqs, writeReqs AccessRequirements) *Attribute {
	if g.Complete() {
		return nil
	}
	a := &Attribute{
		handle:    g.startHandle + ble.Handle(len(g.attributes)),
		typ:       typ,
		readReqs:  readReqs,
		writeReqs: writeReqs,
		grouping:  g,
	}
	g.attributes = append(g.attributes, a)
	return a
}
