package client

import (
	"time"

	"github.com/corvid-labs/btsdp"
)

// Default configuration knobs (spec §3, §5: "process-wide read-only
// after init"), named after the original macros they stand in for.
const (
	defaultMaxRecsPerSearch = 49
	defaultMaxAttrListSize  = btsdp.MaxListByteCount
	defaultInactTimeout     = 30 * time.Second
)

// Config holds the read-only knobs a discovery runs with:
// max_recs_per_search, max_attr_list_size and SDP_INACT_TIMEOUT_MS.
// It is assembled once from Option functions and never mutated after.
type Config struct {
	maxRecsPerSearch int
	maxAttrListSize  int
	inactTimeout     time.Duration
}

func defaultConfig() Config {
	return Config{
		maxRecsPerSearch: defaultMaxRecsPerSearch,
		maxAttrListSize:  defaultMaxAttrListSize,
		inactTimeout:     defaultInactTimeout,
	}
}

// Option configures a discovery, following the teacher's ble.Option
// functional-options idiom.
type Option func(*Config)

// MaxRecsPerSearch bounds how many service-record handles a single
// search accumulates (spec §4.5 step 2).
func MaxRecsPerSearch(n int) Option {
	return func(c *Config) { c.maxRecsPerSearch = n }
}

// MaxAttrListSize bounds the max_attr_bytes field sent with every
// SERVICE_ATTR_REQ / SERVICE_SEARCH_ATTR_REQ.
func MaxAttrListSize(n int) Option {
	return func(c *Config) { c.maxAttrListSize = n }
}

// InactivityTimeout arms the per-request inactivity timer (spec §5);
// any response or disconnect cancels it before it fires.
func InactivityTimeout(d time.Duration) Option {
	return func(c *Config) { c.inactTimeout = d }
}

// DiscoverRequest is one discovery's parameters (spec §3, §4.5).
type DiscoverRequest struct {
	UUIDs   []btsdp.UUID
	AttrIDs []uint16

	// AttrSearch selects Flow B (combined search-attribute) when true,
	// Flow A (search then per-handle attribute requests) when false.
	AttrSearch bool

	// DB is the destination database. A nil DB gets a
	// NewDB(btsdp.MaxListByteCount) of its own.
	DB *DB
}

// Client drives exactly one discovery over one Channel to completion
// (spec §5: "no concurrent discovery on a single channel").
//
// Discover() is the package's sole exported entry point; it exists
// here rather than on the root sdp package (as spec.md's literal
// wording suggests) to avoid an import cycle — client already imports
// sdp for Channel/UUID/Addr/Logger/Status, so sdp cannot import client
// back. See DESIGN.md.
type Client struct {
	ccb *ccb
}

// Discover runs a full discovery over ch and blocks until a terminal
// status is reached: the conversation completed, the channel
// disconnected, or the inactivity timer fired.
func Discover(ch btsdp.Channel, req DiscoverRequest, log btsdp.Logger, opts ...Option) (*DB, btsdp.Status) {
	if req.DB == nil {
		req.DB = NewDB(btsdp.MaxListByteCount)
	}
	if log == nil {
		log = btsdp.NopLogger{}
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Client{ccb: newCCB(ch, req, cfg, log)}
	return c.run()
}

// run is the event loop of spec §5: single consumer, one response in
// flight at a time, an inactivity timer armed per request (§5:
// "cancellation & timeouts"). A reader goroutine feeds frames back so
// the timer and the disconnect signal can be waited on concurrently
// with the blocking Channel.Read — Read itself has no deadline
// parameter in the Channel interface, so this is the only way to
// race it against a timeout.
func (c *Client) run() (*DB, btsdp.Status) {
	b := c.ccb

	if st := b.start(); st != btsdp.StatusPending {
		b.phase = phaseDone
		return b.db, st
	}

	type frame struct {
		n   int
		err error
	}
	rxBuf := make([]byte, btsdp.MaxListByteCount+pduHeaderLen+32)
	frames := make(chan frame, 1)
	readOne := func() {
		n, err := b.ch.Read(rxBuf)
		frames <- frame{n, err}
	}
	go readOne()

	timer := time.NewTimer(b.cfg.inactTimeout)
	defer timer.Stop()

	for {
		select {
		case <-b.ch.Disconnected():
			b.phase = phaseDone
			return b.db, btsdp.StatusDisconnected

		case <-timer.C:
			b.phase = phaseDone
			return b.db, btsdp.StatusTimeout

		case f := <-frames:
			if f.err != nil {
				b.phase = phaseDone
				return b.db, btsdp.StatusDisconnected
			}
			if !timer.Stop() {
				<-timer.C
			}

			st := b.onPDU(rxBuf[:f.n])
			if st != btsdp.StatusPending {
				b.phase = phaseDone
				return b.db, st
			}

			timer.Reset(b.cfg.inactTimeout)
			go readOne()
		}
	}
}
