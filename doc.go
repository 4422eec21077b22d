// Package sdp holds the types shared across the engine and its
// callers: the L2CAP Channel collaborator, UUID and Addr value types,
// Logger, and the terminal Status codes a discovery can end in.
//
// The discovery engine itself — the request/response state machine,
// continuation reassembly, the recursive attribute decoder and the
// arena-backed discovery database — lives in the client subpackage.
// client.Discover takes a Channel to an already-connected remote
// device and a client.DiscoverRequest (service UUID filters, optional
// attribute-ID filters, a destination database) and drives the SDP
// conversation to a terminal Status.
package sdp
