package client

import "github.com/corvid-labs/btsdp"

// phase is the CCB's discovery state (spec §3, §4.5).
type phase int

const (
	phaseIdle phase = iota
	phaseWaitHandles
	phaseWaitAttr
	phaseWaitSearchAttr
	phaseDone
)

// depth packs attribute-tree nesting depth together with the
// "under ATTR_ID_ADDITION_PROTO_DESC_LISTS" flag spec §4.4.1 describes
// as OR'd into the depth byte in the original source. Spec §9 calls
// that bit-smuggling out explicitly and asks for a small struct
// instead, which is what this is.
type depth struct {
	level          int
	additionalList bool
}

func (d depth) next() depth { return depth{level: d.level + 1, additionalList: d.additionalList} }

func (d depth) underAdditionalList() depth {
	return depth{level: d.level, additionalList: true}
}

func (d depth) tooDeep() bool { return d.level >= btsdp.MaxNestLevels }

// ccb is the per-discovery Connection Control Block (spec §3, C6):
// mutable state shared by the reassembler, decoder and state machine,
// all driven single-threaded from Client.run (spec §5).
type ccb struct {
	ch  btsdp.Channel
	log btsdp.Logger

	remoteAddr btsdp.Addr
	phase      phase

	transactionID uint16
	isAttrSearch  bool

	handles    []uint32
	numHandles int
	curHandle  int

	scratch    []byte
	scratchLen int

	db *DB

	req DiscoverRequest
	cfg Config
}

func newCCB(ch btsdp.Channel, req DiscoverRequest, cfg Config, log btsdp.Logger) *ccb {
	return &ccb{
		ch:           ch,
		log:          log,
		remoteAddr:   ch.RemoteAddr(),
		isAttrSearch: req.AttrSearch,
		db:           req.DB,
		req:          req,
		cfg:          cfg,
	}
}

// nextTransactionID returns a strictly increasing 16-bit transaction
// ID (spec §8's "Transaction IDs ... strictly increasing within a
// CCB"), wrapping the way a 16-bit counter does in the original.
func (c *ccb) nextTransactionID() uint16 {
	id := c.transactionID
	c.transactionID++
	return id
}
