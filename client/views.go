package client

import "github.com/corvid-labs/btsdp"

// RecView is a read-only, fully-materialized view of one discovered
// service record, safe to hand to a caller after discovery
// terminates: it holds no reference to the DB's internal index
// arrays.
type RecView struct {
	RemoteAddr btsdp.Addr
	Attrs      []*AttrView
}

// AttrView is a read-only view of one attribute tree node.
type AttrView struct {
	AttrID uint16
	Type   ElementType
	Len    int // payload length as decoded (post UUID compression)

	U8    uint8
	U16   uint16
	U32   uint32
	Bytes []byte // populated for Text, URL, and any non-inline payload

	Children []*AttrView // populated for Seq/Alt (and the synthetic protocol-list re-tag)
}

// Records materializes every discovered record, in discovery order,
// as a tree of RecView/AttrView the caller can walk without touching
// package-internal arena indices.
func (db *DB) Records() []*RecView {
	out := make([]*RecView, 0, len(db.recs))
	for idx := db.firstRecIdx(); idx != nilIdx; idx = db.recs[idx].NextRec {
		out = append(out, db.recView(idx))
	}
	return out
}

func (db *DB) recView(idx int) *RecView {
	r := &db.recs[idx]
	v := &RecView{RemoteAddr: r.RemoteAddr}
	for a := r.FirstAttr; a != nilIdx; a = db.attrs[a].Next {
		v.Attrs = append(v.Attrs, db.attrView(a))
	}
	return v
}

func (db *DB) attrView(idx int) *AttrView {
	a := &db.attrs[idx]
	v := &AttrView{
		AttrID: a.AttrID,
		Type:   a.Type,
		Len:    a.Len,
		U8:     a.U8,
		U16:    a.U16,
		U32:    a.U32,
		Bytes:  a.Bytes,
	}
	for c := a.FirstChild; c != nilIdx; c = db.attrs[c].Next {
		v.Children = append(v.Children, db.attrView(c))
	}
	return v
}

// FindAttr returns the first top-level attribute with the given ID,
// or nil if absent.
func (r *RecView) FindAttr(id uint16) *AttrView {
	for _, a := range r.Attrs {
		if a.AttrID == id {
			return a
		}
	}
	return nil
}
