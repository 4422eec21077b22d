package sdp

// Well-known attribute IDs (spec §3, §4.4.1; see original_source's
// sdp_api.h for the full catalog — only the ones this engine's
// decoder treats specially, plus a few commonly filtered-on ones, are
// reproduced here).
const (
	AttrIDServiceRecordHandle         = 0x0000
	AttrIDServiceClassIDList          = 0x0001
	AttrIDServiceRecordState          = 0x0002
	AttrIDServiceID                   = 0x0003
	AttrIDProtocolDescList            = 0x0004
	AttrIDBrowseGroupList             = 0x0005
	AttrIDLanguageBaseAttrIDList      = 0x0006
	AttrIDServiceInfoTimeToLive       = 0x0007
	AttrIDServiceAvailability         = 0x0008
	AttrIDBTProfileDescList           = 0x0009
	AttrIDDocumentationURL            = 0x000A
	AttrIDClientExecutableURL         = 0x000B
	AttrIDIconURL                     = 0x000C
	AttrIDAdditionProtoDescLists      = 0x000D
	AttrIDServiceName                 = 0x0100
	AttrIDServiceDescription          = 0x0101
	AttrIDProviderName                = 0x0102
)

// PSMSDP is the well-known L2CAP PSM for the SDP service.
const PSMSDP = 0x0001

// SDP wire PDU opcodes (spec §6).
const (
	PDUServiceSearchReq     = 0x02
	PDUServiceSearchRsp     = 0x03
	PDUServiceAttrReq       = 0x04
	PDUServiceAttrRsp       = 0x05
	PDUServiceSearchAttrReq = 0x06
	PDUServiceSearchAttrRsp = 0x07
)

// Wire-format limits (spec §3, §4.3).
const (
	// MaxContinuationLen is the largest permitted continuation-state
	// byte count (SDP_MAX_CONTINUATION_LEN).
	MaxContinuationLen = 16

	// MaxListByteCount bounds the reassembled scratchpad
	// (SDP_MAX_LIST_BYTE_COUNT).
	MaxListByteCount = 4096

	// MaxNestLevels caps attribute-tree recursion depth (§3, §4.4).
	MaxNestLevels = 5
)
