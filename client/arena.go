package client

import "github.com/corvid-labs/btsdp"

// nilIdx marks the absence of a record/attribute edge. Go has no safe
// way to keep a raw pointer into another slice's backing array alive
// across reallocation, so the arena of spec §4.2 is rendered as
// index-based edges into DB's own slices — one of the two faithful
// renderings spec §9 ("Arena / linked lists") allows.
const nilIdx = -1

// recNodeSize and attrNodeBaseSize are the byte costs charged against
// a DB's budget for each record and attribute node, standing in for
// sizeof(tSDP_DISC_REC) / sizeof(tSDP_DISC_ATTR) in the original. They
// let the arena enforce the same exhaustion behavior (§4.2, §8) even
// though nodes are Go structs, not packed bytes.
const (
	recNodeSize     = 16
	attrNodeBaseSize = 20
)

// Rec is one discovered service record (spec §3). Attributes are
// reached via FirstAttr, an index into the owning DB's attribute
// arena; NextRec chains records in discovery order.
type Rec struct {
	RemoteAddr btsdp.Addr
	FirstAttr  int
	NextRec    int
}

// Attr is one node of an attribute tree (spec §3): a tagged value,
// possibly with children (for Seq/Alt elements) reached via FirstChild,
// and a next-sibling link via Next.
type Attr struct {
	AttrID     uint16
	Type       ElementType
	Len        int // payload length as decoded (post UUID compression)

	U8  uint8
	U16 uint16
	U32 uint32
	// Bytes holds the raw payload for types that aren't stored inline
	// (text, URL, oversized int/uuid, uncompressed 128-bit uuid).
	Bytes []byte

	FirstChild int // index into DB.attrs, for Seq/Alt values
	Next       int // index into DB.attrs, sibling
}

// DB is the discovery database: a fixed-budget arena that records and
// attributes are bump-allocated from (spec §3). Discovery exclusively
// owns a DB for its lifetime and returns it to the caller on
// termination (spec §9, "Exclusive-or shared ownership").
type DB struct {
	recs  []Rec
	attrs []Attr

	memFree int
}

// NewDB creates a discovery database with the given byte budget. A
// caller doing many discoveries should create one DB per discovery,
// the way the original's caller owns one tSDP_DISCOVERY_DB buffer per
// search.
func NewDB(capacityBytes int) *DB {
	return &DB{memFree: capacityBytes}
}

func (db *DB) firstRecIdx() int {
	if len(db.recs) == 0 {
		return nilIdx
	}
	return 0
}

// MemFree reports the remaining byte budget.
func (db *DB) MemFree() int { return db.memFree }

// addRecord reserves a Rec node, appends it to the tail of the record
// chain, and copies in the remote address. It returns nilIdx if the
// arena is full (spec §4.2, "Exhaustion is a soft error").
func (db *DB) addRecord(addr btsdp.Addr) int {
	if db.memFree < recNodeSize {
		return nilIdx
	}
	db.memFree -= recNodeSize
	idx := len(db.recs)
	db.recs = append(db.recs, Rec{RemoteAddr: addr, FirstAttr: nilIdx, NextRec: nilIdx})

	if idx > 0 {
		tail := 0
		for db.recs[tail].NextRec != nilIdx {
			tail = db.recs[tail].NextRec
		}
		db.recs[tail].NextRec = idx
	}
	return idx
}

// allocAttr reserves an attribute node sized for valueSize bytes of
// inline payload, per §4.2's "sizeof(Attr) + max(0, value_size-4),
// rounded up to 4". It returns nilIdx on exhaustion.
func (db *DB) allocAttr(valueSize int) int {
	total := attrNodeBaseSize
	if valueSize > 4 {
		total += valueSize - 4
	}
	total = (total + 3) &^ 3

	if db.memFree < total {
		return nilIdx
	}
	db.memFree -= total
	idx := len(db.attrs)
	db.attrs = append(db.attrs, Attr{FirstChild: nilIdx, Next: nilIdx})
	return idx
}

// chargeContainer accounts for a Seq/Alt (or synthetic protocol-list)
// node, which only ever costs the base node size: its value is a
// pointer to children, never inline bytes (spec §4.4 step 2).
func (db *DB) chargeContainer() int {
	if db.memFree < attrNodeBaseSize {
		return nilIdx
	}
	db.memFree -= attrNodeBaseSize
	idx := len(db.attrs)
	db.attrs = append(db.attrs, Attr{FirstChild: nilIdx, Next: nilIdx})
	return idx
}

// linkAttr appends attr (by index) to the end of parent's child list,
// or to rec's top-level attribute list when parent is nilIdx (spec
// §4.2 "Linkage policies").
func (db *DB) linkAttr(recIdx, parentIdx, attrIdx int) {
	if parentIdx == nilIdx {
		rec := &db.recs[recIdx]
		if rec.FirstAttr == nilIdx {
			rec.FirstAttr = attrIdx
			return
		}
		tail := rec.FirstAttr
		for db.attrs[tail].Next != nilIdx {
			tail = db.attrs[tail].Next
		}
		db.attrs[tail].Next = attrIdx
		return
	}

	parent := &db.attrs[parentIdx]
	if parent.FirstChild == nilIdx {
		parent.FirstChild = attrIdx
		return
	}
	tail := parent.FirstChild
	for db.attrs[tail].Next != nilIdx {
		tail = db.attrs[tail].Next
	}
	db.attrs[tail].Next = attrIdx
}
