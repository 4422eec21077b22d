package client

import "github.com/corvid-labs/btsdp"

// reassembleFragment implements the response reassembler of spec §4.3.
// payload holds exactly listByteCount bytes of list data followed by
// the continuation-state block (1 length byte + up to 16 bytes); body
// is the full PDU body the fragment arrived in, used only to bound
// check 2 ("fragment length + 1 continuation-length byte fits within
// the received PDU").
//
// It returns the continuation bytes to echo on the next request (nil
// if none needed) and a terminal status if reassembly must abort;
// status is StatusPending on success.
func (c *ccb) reassembleFragment(listByteCount int, payload, body []byte) (contBytes []byte, status btsdp.Status) {
	if c.scratch == nil {
		c.scratch = make([]byte, btsdp.MaxListByteCount)
	}

	// Step 1: bound the running total.
	if c.scratchLen+listByteCount > btsdp.MaxListByteCount {
		return nil, btsdp.StatusInvalidPDUSize
	}

	// Step 2: the declared fragment length plus the continuation
	// length byte must fit within what was actually received.
	if listByteCount+1 > len(body) {
		return nil, btsdp.StatusInvalidPDUSize
	}
	if listByteCount+1 > len(payload) {
		return nil, btsdp.StatusInvalidPDUSize
	}

	// Step 3: append and advance.
	copy(c.scratch[c.scratchLen:], payload[:listByteCount])
	c.scratchLen += listByteCount

	// Step 4: validate and report the continuation state.
	contLen := int(payload[listByteCount])
	if contLen > btsdp.MaxContinuationLen {
		return nil, btsdp.StatusInvalidContState
	}
	if contLen == 0 {
		return nil, btsdp.StatusPending
	}
	contStart := listByteCount + 1
	if contStart+contLen > len(payload) {
		return nil, btsdp.StatusInvalidPDUSize
	}
	return payload[contStart : contStart+contLen], btsdp.StatusPending
}

// resetScratch discards the reassembled payload, ready for the next
// handle's attribute response (Flow A) or the next discovery.
func (c *ccb) resetScratch() {
	c.scratchLen = 0
}
