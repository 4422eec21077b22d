package client

import (
	"encoding/binary"

	"github.com/corvid-labs/btsdp"
)

// saveAttrSeq implements spec §4.4's entry point: it expects a
// top-level DATA_ELE_SEQ_DESC_TYPE header, allocates a fresh record,
// then decodes the sequence body as (attr-id, value) pairs.
//
// It returns the offset just past the consumed sequence and true on
// success. Any failure — malformed wire data or DB exhaustion — is
// reported as false, matching the original's single NULL-return
// signal for both causes (spec §7 preserves this collapse: both wire
// malformedness and DB exhaustion during attribute save converge on a
// terminating status picked by the caller).
func (c *ccb) saveAttrSeq(buf []byte, pos, msgEnd int) (int, bool) {
	if pos >= msgEnd {
		return pos, false
	}
	typ := buf[pos]
	if typ>>3 != classSeq {
		c.log.Warnf("sdp: wrong type 0x%02x in attr_rsp", typ)
		return pos, false
	}
	pos++

	payloadStart, seqLen, err := getLenFromType(buf, pos, msgEnd, typ)
	if err != nil {
		c.log.Warnf("sdp: bad length in attr_rsp")
		return pos, false
	}

	recIdx := c.db.addRecord(c.remoteAddr)
	if recIdx == nilIdx {
		c.log.Warnf("sdp: DB full adding record")
		return pos, false
	}

	p := payloadStart
	seqEnd := payloadStart + seqLen
	for p < seqEnd {
		idType := buf[p]
		p++
		idStart, idLen, err := getLenFromType(buf, p, seqEnd, idType)
		if err != nil {
			c.log.Warnf("sdp: bad len in attr_rsp")
			return p, false
		}
		if idType>>3 != classUint || idLen != 2 {
			c.log.Warnf("sdp: bad type 0x%02x or len %d in attr_rsp", idType, idLen)
			return idStart, false
		}
		attrID := binary.BigEndian.Uint16(buf[idStart : idStart+2])
		p = idStart + 2

		var ok bool
		p, ok = c.addAttr(buf, p, seqEnd, recIdx, nilIdx, attrID, depth{})
		if !ok {
			c.log.Warnf("sdp: DB full in add_attr")
			return p, false
		}
	}

	return p, true
}

// addAttr is the recursive attribute decoder of spec §4.4. pos points
// at a type-descriptor byte; end bounds how far this element (and any
// nested elements parsed from it) may read. parentIdx is nilIdx for a
// top-level attribute of rec, or the arena index of the containing
// Seq/Alt node.
func (c *ccb) addAttr(buf []byte, pos, end, recIdx, parentIdx int, attrID uint16, d depth) (int, bool) {
	if pos >= end {
		return pos, false
	}
	typ := buf[pos]
	pos++

	payloadStart, attrLen, err := getLenFromType(buf, pos, end, typ)
	if err != nil {
		c.log.Warnf("sdp: bad length in attr_rsp")
		return pos, false
	}
	attrEnd := payloadStart + attrLen
	if attrEnd > end {
		c.log.Warnf("sdp: attribute length beyond end")
		return pos, false
	}

	classBits := typ >> 3
	et := elementType(classBits)

	// §4.4.1: a 2-byte UINT under an "additional list" subtree whose
	// value equals ATTR_ID_PROTOCOL_DESC_LIST is a synthetic re-tag,
	// not a plain integer.
	if et == TypeUint && d.additionalList && attrLen == 2 {
		id := binary.BigEndian.Uint16(buf[payloadStart : payloadStart+2])
		if id == uint16(btsdp.AttrIDProtocolDescList) {
			return c.addProtoDescRewrite(buf, attrEnd, end, recIdx, parentIdx, attrID, d)
		}
	}

	switch et {
	case TypeSeq, TypeAlt:
		return c.addContainer(buf, payloadStart, attrEnd, recIdx, parentIdx, attrID, d, et)
	}

	// Validate fixed-shape types before touching the arena, so a bad
	// shape never leaves a partially-allocated node behind.
	switch et {
	case TypeBool:
		if attrLen != 1 {
			c.log.Warnf("sdp: bad len in boolean attr: %d", attrLen)
			return attrEnd, true
		}
	case TypeUUID:
		switch attrLen {
		case 2, 4, 16:
		default:
			c.log.Warnf("sdp: bad len in uuid attr: %d", attrLen)
			return attrEnd, true
		}
	}

	idx := c.db.allocAttr(attrLen)
	if idx == nilIdx {
		return pos, false
	}
	a := &c.db.attrs[idx]
	a.AttrID = attrID
	a.Type = et
	a.Len = attrLen

	switch et {
	case TypeUint, TypeInt:
		switch attrLen {
		case 1:
			a.U8 = buf[payloadStart]
		case 2:
			a.U16 = binary.BigEndian.Uint16(buf[payloadStart : payloadStart+2])
		case 4:
			a.U32 = binary.BigEndian.Uint32(buf[payloadStart : payloadStart+4])
		default:
			a.Bytes = append([]byte(nil), buf[payloadStart:attrEnd]...)
		}
	case TypeUUID:
		storeUUID(a, buf, payloadStart, attrLen)
	case TypeBool:
		a.U8 = buf[payloadStart]
	case TypeText, TypeURL:
		a.Bytes = append([]byte(nil), buf[payloadStart:attrEnd]...)
	default:
		// Any other class: node is allocated but carries no value;
		// the cursor still advances past it.
	}

	c.db.linkAttr(recIdx, parentIdx, idx)
	return attrEnd, true
}

// addContainer handles Seq/Alt elements: reserve a childless node,
// then — unless the depth cap has been hit — recurse over the
// element's body, appending each decoded child (spec §4.4 step 4's
// Sequence/Alternative row, and step 5's depth cap).
func (c *ccb) addContainer(buf []byte, bodyStart, bodyEnd, recIdx, parentIdx int, attrID uint16, d depth, et ElementType) (int, bool) {
	idx := c.db.chargeContainer()
	if idx == nilIdx {
		return bodyStart, false
	}
	a := &c.db.attrs[idx]
	a.AttrID = attrID
	a.Type = et

	if d.tooDeep() {
		c.log.Warnf("sdp: attribute nesting too deep")
		c.db.linkAttr(recIdx, parentIdx, idx)
		return bodyEnd, true
	}

	childDepth := d.next()
	if d.additionalList || attrID == uint16(btsdp.AttrIDAdditionProtoDescLists) {
		childDepth = childDepth.underAdditionalList()
	}

	p := bodyStart
	for p < bodyEnd {
		var ok bool
		p, ok = c.addAttr(buf, p, bodyEnd, recIdx, idx, 0, childDepth)
		if !ok {
			return p, false
		}
	}

	c.db.linkAttr(recIdx, parentIdx, idx)
	return bodyEnd, true
}

// addProtoDescRewrite implements the §4.4.1 synthetic re-tag: the
// current node becomes a one-child container, and that single child
// is decoded (starting right after the consumed UINT16 tag, bounded
// by the enclosing element's own end) with attr_id rewritten to
// ATTR_ID_PROTOCOL_DESC_LIST.
func (c *ccb) addProtoDescRewrite(buf []byte, afterTag, end, recIdx, parentIdx int, attrID uint16, d depth) (int, bool) {
	idx := c.db.chargeContainer()
	if idx == nilIdx {
		return afterTag, false
	}
	a := &c.db.attrs[idx]
	a.AttrID = attrID
	a.Type = TypeSeq

	if d.tooDeep() {
		c.log.Warnf("sdp: attribute nesting too deep")
		c.db.linkAttr(recIdx, parentIdx, idx)
		return end, true
	}

	newPos, ok := c.addAttr(buf, afterTag, end, recIdx, idx, uint16(btsdp.AttrIDProtocolDescList), d.next())
	if !ok {
		return newPos, false
	}

	c.db.linkAttr(recIdx, parentIdx, idx)
	return newPos, true
}

// storeUUID applies the UUID-compression rule of spec §4.4: a 32-bit
// value under 0x10000 collapses to 16 bits, and a 128-bit value whose
// trailing 12 bytes match BaseUUID collapses to 16 or 32 bits. This is
// lossy, one-way normalization (spec §9): the original wire bytes are
// not retained once compressed.
func storeUUID(a *Attr, buf []byte, start, length int) {
	switch length {
	case 2:
		a.U16 = binary.BigEndian.Uint16(buf[start : start+2])
		a.Len = 2
	case 4:
		v := binary.BigEndian.Uint32(buf[start : start+4])
		if v < 0x10000 {
			a.U16 = uint16(v)
			a.Len = 2
		} else {
			a.U32 = v
			a.Len = 4
		}
	case 16:
		raw := buf[start : start+16]
		if btsdp.IsBaseUUID(raw) {
			if raw[0] == 0 && raw[1] == 0 {
				a.U16 = binary.BigEndian.Uint16(raw[2:4])
				a.Len = 2
			} else {
				a.U32 = binary.BigEndian.Uint32(raw[0:4])
				a.Len = 4
			}
		} else {
			a.Bytes = append([]byte(nil), raw...)
			a.Len = 16
		}
	}
}
