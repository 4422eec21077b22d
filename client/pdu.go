package client

import "encoding/binary"

// pduHeader is the 5-byte prefix common to every SDP PDU (spec §6):
// a 1-byte PDU ID, a 2-byte transaction ID and a 2-byte parameter
// length. It follows the teacher's typed-byte-slice idiom for wire
// structs (ExchangeMTURequest, FindInformationRequest, ...).
type pduHeader []byte

const pduHeaderLen = 5

func (h pduHeader) PDUID() byte              { return h[0] }
func (h pduHeader) SetPDUID(id byte)         { h[0] = id }
func (h pduHeader) TransactionID() uint16    { return binary.BigEndian.Uint16(h[1:3]) }
func (h pduHeader) SetTransactionID(v uint16) { binary.BigEndian.PutUint16(h[1:3], v) }
func (h pduHeader) ParamLen() uint16         { return binary.BigEndian.Uint16(h[3:5]) }
func (h pduHeader) SetParamLen(v uint16)     { binary.BigEndian.PutUint16(h[3:5], v) }

// ServiceSearchReq is the parameter block of a SDP_ServiceSearchRequest
// PDU (spec §6): a UUID sequence, a 2-byte max-record-count, and a
// continuation state. The variable-length prefix means there is no
// fixed offset to wrap with accessors; discover.go builds it directly.
type ServiceSearchReq []byte

// ServiceSearchRsp is the fixed-position prefix of a
// SDP_ServiceSearchResponse PDU's parameters, immediately following
// the common header: a 2-byte total count and a 2-byte current count.
// The handle list and continuation state that follow are
// variable-length and read directly off the remainder.
type ServiceSearchRsp []byte

func (r ServiceSearchRsp) TotalServiceRecordCount() uint16 {
	return binary.BigEndian.Uint16(r[0:2])
}

func (r ServiceSearchRsp) CurrentServiceRecordCount() uint16 {
	return binary.BigEndian.Uint16(r[2:4])
}

// Rest returns everything after the two counts: the handle list
// followed by the continuation state.
func (r ServiceSearchRsp) Rest() []byte { return r[4:] }

// ServiceAttrReq is the parameter block of a SDP_ServiceAttributeRequest
// PDU: a 4-byte handle, a 2-byte max-attr-byte-count, an attribute-ID
// sequence, and a continuation state. Built directly in discover.go.
type ServiceAttrReq []byte

// ServiceAttrRsp is the fixed-position prefix of a
// SDP_ServiceAttributeResponse PDU's parameters: a 2-byte
// attribute-list byte count, followed by the list itself and the
// continuation state.
type ServiceAttrRsp []byte

func (r ServiceAttrRsp) AttributeListByteCount() uint16 {
	return binary.BigEndian.Uint16(r[0:2])
}

func (r ServiceAttrRsp) Rest() []byte { return r[2:] }

// ServiceSearchAttrReq is the parameter block of a
// SDP_ServiceSearchAttributeRequest PDU: a UUID sequence, a 2-byte
// max-attr-byte-count, an attribute-ID sequence, and a continuation
// state.
type ServiceSearchAttrReq []byte

// ServiceSearchAttrRsp has the identical shape to ServiceAttrRsp
// (spec §6): a 2-byte byte count, the attribute-list bytes, and a
// continuation state.
type ServiceSearchAttrRsp = ServiceAttrRsp
