package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/btsdp"
)

func TestDBAddRecordChainsInOrder(t *testing.T) {
	db := NewDB(1024)
	a := db.addRecord(btsdp.Addr{0, 0, 0, 0, 0, 1})
	b := db.addRecord(btsdp.Addr{0, 0, 0, 0, 0, 2})
	require.NotEqual(t, nilIdx, a)
	require.NotEqual(t, nilIdx, b)
	require.Equal(t, b, db.recs[a].NextRec)
	require.Equal(t, nilIdx, db.recs[b].NextRec)

	recs := db.Records()
	require.Len(t, recs, 2)
	require.Equal(t, btsdp.Addr{0, 0, 0, 0, 0, 1}, recs[0].RemoteAddr)
	require.Equal(t, btsdp.Addr{0, 0, 0, 0, 0, 2}, recs[1].RemoteAddr)
}

func TestDBExhaustion(t *testing.T) {
	db := NewDB(recNodeSize) // budget for exactly one record
	a := db.addRecord(btsdp.Addr{})
	require.NotEqual(t, nilIdx, a)

	b := db.addRecord(btsdp.Addr{})
	require.Equal(t, nilIdx, b)
}

func TestAllocAttrSizing(t *testing.T) {
	db := NewDB(1024)
	before := db.MemFree()

	// Inline-sized payload (<=4 bytes) costs exactly the base node size.
	idx := db.allocAttr(2)
	require.NotEqual(t, nilIdx, idx)
	require.Equal(t, before-attrNodeBaseSize, db.MemFree())

	// Oversized payload costs base + excess, rounded up to 4.
	before = db.MemFree()
	idx = db.allocAttr(7)
	require.NotEqual(t, nilIdx, idx)
	require.Equal(t, before-(attrNodeBaseSize+4), db.MemFree())
}

// TestDBOverflowPartialRecordSurvives reproduces the DB-sizing
// scenario: a budget of sizeof(Rec)+2*sizeof(Attr), one record
// offering 5 attributes. Only the record and its first two attributes
// fit; the third allocation fails, but everything allocated before it
// stays readable and correctly linked.
func TestDBOverflowPartialRecordSurvives(t *testing.T) {
	db := NewDB(recNodeSize + 2*attrNodeBaseSize)

	rec := db.addRecord(btsdp.Addr{0, 0, 0, 0, 0, 9})
	require.NotEqual(t, nilIdx, rec)

	linked := 0
	for i := 0; i < 5; i++ {
		idx := db.allocAttr(2) // inline payload, costs exactly attrNodeBaseSize
		if idx == nilIdx {
			break
		}
		db.attrs[idx].AttrID = uint16(0x0001 + i)
		db.attrs[idx].Type = TypeUint
		db.attrs[idx].U16 = uint16(i)
		db.linkAttr(rec, nilIdx, idx)
		linked++
	}

	require.Equal(t, 2, linked, "only two attributes should fit in the remaining budget")
	require.Equal(t, 0, db.MemFree())

	recs := db.Records()
	require.Len(t, recs, 1)
	require.Len(t, recs[0].Attrs, 2)
	require.Equal(t, uint16(0x0001), recs[0].Attrs[0].AttrID)
	require.Equal(t, uint16(0), recs[0].Attrs[0].U16)
	require.Equal(t, uint16(0x0002), recs[0].Attrs[1].AttrID)
	require.Equal(t, uint16(1), recs[0].Attrs[1].U16)
}

func TestLinkAttrTopLevelAndNested(t *testing.T) {
	db := NewDB(4096)
	rec := db.addRecord(btsdp.Addr{})

	top1 := db.allocAttr(2)
	top2 := db.allocAttr(2)
	db.linkAttr(rec, nilIdx, top1)
	db.linkAttr(rec, nilIdx, top2)

	child := db.allocAttr(2)
	db.linkAttr(rec, top1, child)

	require.Equal(t, top1, db.recs[rec].FirstAttr)
	require.Equal(t, top2, db.attrs[top1].Next)
	require.Equal(t, child, db.attrs[top1].FirstChild)
}
