package client

import (
	"encoding/binary"

	"github.com/corvid-labs/btsdp"
)

// maxReqSize is the conservative request budget spec §4.5 asks for:
// "a conservative budget check ... vs the buffer" before every
// request is built. It stands in for a default post-MTU-exchange
// L2CAP payload size; requests that would not fit are aborted before
// any byte is written, terminating the CCB with InvalidContState.
const maxReqSize = 672

// start sends the first request of whichever flow the CCB's
// DiscoverRequest selected (spec §4.5).
func (c *ccb) start() btsdp.Status {
	if c.isAttrSearch {
		c.phase = phaseWaitSearchAttr
		return c.sendServiceSearchAttrReq(nil)
	}
	c.phase = phaseWaitHandles
	return c.sendServiceSearchReq(nil)
}

// onPDU is the PDU dispatch table of spec §4.5: cancel-the-timer
// bookkeeping happens in Client.run, so this only routes by PDU type
// and current phase. Any other combination terminates with
// GenericError.
func (c *ccb) onPDU(raw []byte) btsdp.Status {
	if len(raw) < pduHeaderLen {
		return btsdp.StatusInvalidPDUSize
	}
	h := pduHeader(raw[:pduHeaderLen])
	body := raw[pduHeaderLen:]
	if int(h.ParamLen()) > len(body) {
		return btsdp.StatusInvalidPDUSize
	}
	body = body[:h.ParamLen()]

	switch {
	case c.phase == phaseWaitHandles && h.PDUID() == byte(btsdp.PDUServiceSearchRsp):
		return c.onServiceSearchRsp(body)
	case c.phase == phaseWaitAttr && h.PDUID() == byte(btsdp.PDUServiceAttrRsp):
		return c.onServiceAttrRsp(body)
	case c.phase == phaseWaitSearchAttr && h.PDUID() == byte(btsdp.PDUServiceSearchAttrRsp):
		return c.onServiceSearchAttrRsp(body)
	default:
		c.log.Warnf("sdp: unexpected pdu 0x%02x in phase %d", h.PDUID(), c.phase)
		return btsdp.StatusGenericError
	}
}

// onServiceSearchRsp handles Flow A step 2.
func (c *ccb) onServiceSearchRsp(body []byte) btsdp.Status {
	if len(body) < 4 {
		return btsdp.StatusInvalidPDUSize
	}
	rsp := ServiceSearchRsp(body)
	total := int(rsp.TotalServiceRecordCount())
	current := int(rsp.CurrentServiceRecordCount())

	if total == 0 || current == 0 {
		return btsdp.StatusNoRecsMatch
	}
	if total > c.cfg.maxRecsPerSearch {
		total = c.cfg.maxRecsPerSearch
	}

	rest := rsp.Rest()
	if current*4+1 > len(rest) {
		return btsdp.StatusInvalidPDUSize
	}
	handleBytes := rest[:current*4]

	orig := c.numHandles
	for i := 0; i < current && c.numHandles < total && c.numHandles < c.cfg.maxRecsPerSearch; i++ {
		c.handles = append(c.handles, binary.BigEndian.Uint32(handleBytes[i*4:i*4+4]))
		c.numHandles++
	}

	// Open Question (spec §9, bullet 3): a wrap that leaves numHandles
	// lower than where this fragment started is folded into
	// NoRecsMatch, preserved verbatim for compatibility even though
	// the two situations are not really the same thing.
	if c.numHandles < orig {
		return btsdp.StatusNoRecsMatch
	}

	contLen, cont, status := parseContField(rest[current*4:])
	if status != btsdp.StatusPending {
		return status
	}
	if contLen > 0 {
		return c.sendServiceSearchReq(cont)
	}

	c.phase = phaseWaitAttr
	c.curHandle = 0
	return c.sendNextServiceAttrReq()
}

// onServiceAttrRsp handles Flow A step 3, one handle at a time.
func (c *ccb) onServiceAttrRsp(body []byte) btsdp.Status {
	if len(body) < 2 {
		return btsdp.StatusInvalidPDUSize
	}
	rsp := ServiceAttrRsp(body)
	listLen := int(rsp.AttributeListByteCount())

	cont, status := c.reassembleFragment(listLen, rsp.Rest(), body)
	if status != btsdp.StatusPending {
		return status
	}
	if cont != nil {
		return c.sendServiceAttrReq(c.handles[c.curHandle], cont)
	}

	if _, ok := c.saveAttrSeq(c.scratch, 0, c.scratchLen); !ok {
		return btsdp.StatusDBFull
	}

	c.curHandle++
	return c.sendNextServiceAttrReq()
}

// onServiceSearchAttrRsp handles Flow B.
func (c *ccb) onServiceSearchAttrRsp(body []byte) btsdp.Status {
	if len(body) < 2 {
		return btsdp.StatusInvalidPDUSize
	}
	rsp := ServiceSearchAttrRsp(body)
	listLen := int(rsp.AttributeListByteCount())

	cont, status := c.reassembleFragment(listLen, rsp.Rest(), body)
	if status != btsdp.StatusPending {
		return status
	}
	if cont != nil {
		return c.sendServiceSearchAttrReq(cont)
	}

	// Open Question (spec §9, bullet 1): the reassembled scratchpad
	// must be exactly one outer sequence whose declared length covers
	// the whole remainder. Preserved as a hard check — no tolerance
	// for padding is added.
	if c.scratchLen < 1 {
		return btsdp.StatusInvalidContState
	}
	typ := c.scratch[0]
	if typ>>3 != classSeq {
		return btsdp.StatusIllegalParameter
	}
	payloadStart, seqLen, err := getLenFromType(c.scratch, 1, c.scratchLen, typ)
	if err != nil || payloadStart+seqLen != c.scratchLen {
		return btsdp.StatusInvalidContState
	}

	p := payloadStart
	for p < c.scratchLen {
		var ok bool
		p, ok = c.saveAttrSeq(c.scratch, p, c.scratchLen)
		if !ok {
			return btsdp.StatusDBFull
		}
	}

	return btsdp.StatusSuccess
}

// parseContField reads the trailing 1-byte-length continuation state
// common to every response PDU (spec §4.3, §6). It replaces the
// original's raw-pointer bound check (spec §9, bullet 2, "a rewrite
// should perform checked arithmetic") with plain slice-length checks.
func parseContField(b []byte) (int, []byte, btsdp.Status) {
	if len(b) < 1 {
		return 0, nil, btsdp.StatusInvalidPDUSize
	}
	n := int(b[0])
	if n > btsdp.MaxContinuationLen {
		return 0, nil, btsdp.StatusInvalidContState
	}
	if 1+n > len(b) {
		return 0, nil, btsdp.StatusInvalidPDUSize
	}
	return n, b[1 : 1+n], btsdp.StatusPending
}

func (c *ccb) sendNextServiceAttrReq() btsdp.Status {
	if c.curHandle >= c.numHandles {
		return btsdp.StatusSuccess
	}
	c.resetScratch()
	return c.sendServiceAttrReq(c.handles[c.curHandle], nil)
}

func (c *ccb) sendServiceSearchReq(cont []byte) btsdp.Status {
	pkt, ok := buildServiceSearchReq(c.nextTransactionID(), c.req.UUIDs, uint16(c.cfg.maxRecsPerSearch), cont, c.log)
	if !ok {
		return btsdp.StatusInvalidContState
	}
	if _, err := c.ch.Write(pkt); err != nil {
		return btsdp.StatusDisconnected
	}
	return btsdp.StatusPending
}

func (c *ccb) sendServiceAttrReq(handle uint32, cont []byte) btsdp.Status {
	pkt, ok := buildServiceAttrReq(c.nextTransactionID(), handle, uint16(c.cfg.maxAttrListSize), c.req.AttrIDs, cont)
	if !ok {
		return btsdp.StatusInvalidContState
	}
	if _, err := c.ch.Write(pkt); err != nil {
		return btsdp.StatusDisconnected
	}
	return btsdp.StatusPending
}

func (c *ccb) sendServiceSearchAttrReq(cont []byte) btsdp.Status {
	pkt, ok := buildServiceSearchAttrReq(c.nextTransactionID(), c.req.UUIDs, uint16(c.cfg.maxAttrListSize), c.req.AttrIDs, cont, c.log)
	if !ok {
		return btsdp.StatusInvalidContState
	}
	if _, err := c.ch.Write(pkt); err != nil {
		return btsdp.StatusDisconnected
	}
	return btsdp.StatusPending
}

// buildServiceSearchReq assembles a SERVICE_SEARCH_REQ: uuid_seq,
// max_recs(u16), cont (spec §6).
func buildServiceSearchReq(tid uint16, uuids []btsdp.UUID, maxRecCount uint16, cont []byte, log btsdp.Logger) ([]byte, bool) {
	pattern := buildUUIDSeq(make([]byte, 256), 256, uuids, log)

	body := make([]byte, 0, len(pattern)+2+1+len(cont))
	body = append(body, pattern...)
	body = append(body, byte(maxRecCount>>8), byte(maxRecCount))
	body = append(body, byte(len(cont)))
	body = append(body, cont...)

	if pduHeaderLen+len(body) > maxReqSize {
		return nil, false
	}

	pkt := make([]byte, pduHeaderLen+len(body))
	h := pduHeader(pkt[:pduHeaderLen])
	h.SetPDUID(byte(btsdp.PDUServiceSearchReq))
	h.SetTransactionID(tid)
	h.SetParamLen(uint16(len(body)))
	copy(pkt[pduHeaderLen:], body)
	return pkt, true
}

// buildServiceAttrReq assembles a SERVICE_ATTR_REQ: handle(u32),
// max_attr_bytes(u16), attrid_seq, cont.
func buildServiceAttrReq(tid uint16, handle uint32, maxAttrBytes uint16, attrIDs []uint16, cont []byte) ([]byte, bool) {
	idSeq := buildAttribSeq(make([]byte, 512), attrIDs)

	body := make([]byte, 0, 4+2+len(idSeq)+1+len(cont))
	body = append(body, byte(handle>>24), byte(handle>>16), byte(handle>>8), byte(handle))
	body = append(body, byte(maxAttrBytes>>8), byte(maxAttrBytes))
	body = append(body, idSeq...)
	body = append(body, byte(len(cont)))
	body = append(body, cont...)

	if pduHeaderLen+len(body) > maxReqSize {
		return nil, false
	}

	pkt := make([]byte, pduHeaderLen+len(body))
	h := pduHeader(pkt[:pduHeaderLen])
	h.SetPDUID(byte(btsdp.PDUServiceAttrReq))
	h.SetTransactionID(tid)
	h.SetParamLen(uint16(len(body)))
	copy(pkt[pduHeaderLen:], body)
	return pkt, true
}

// buildServiceSearchAttrReq assembles a SERVICE_SEARCH_ATTR_REQ:
// uuid_seq, max_attr_bytes(u16), attrid_seq, cont.
func buildServiceSearchAttrReq(tid uint16, uuids []btsdp.UUID, maxAttrBytes uint16, attrIDs []uint16, cont []byte, log btsdp.Logger) ([]byte, bool) {
	pattern := buildUUIDSeq(make([]byte, 256), 256, uuids, log)
	idSeq := buildAttribSeq(make([]byte, 512), attrIDs)

	body := make([]byte, 0, len(pattern)+2+len(idSeq)+1+len(cont))
	body = append(body, pattern...)
	body = append(body, byte(maxAttrBytes>>8), byte(maxAttrBytes))
	body = append(body, idSeq...)
	body = append(body, byte(len(cont)))
	body = append(body, cont...)

	if pduHeaderLen+len(body) > maxReqSize {
		return nil, false
	}

	pkt := make([]byte, pduHeaderLen+len(body))
	h := pduHeader(pkt[:pduHeaderLen])
	h.SetPDUID(byte(btsdp.PDUServiceSearchAttrReq))
	h.SetTransactionID(tid)
	h.SetParamLen(uint16(len(body)))
	copy(pkt[pduHeaderLen:], body)
	return pkt, true
}
