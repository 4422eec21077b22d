package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/btsdp"
)

// fakeChannel is a canned-response btsdp.Channel: every queued frame is
// handed back in order on successive Reads, regardless of what was
// written, which is enough to drive the request/response state machine
// through a scripted conversation.
type fakeChannel struct {
	remote btsdp.Addr
	frames [][]byte
	writes [][]byte
	done   chan struct{}
}

func newFakeChannel(frames ...[]byte) *fakeChannel {
	return &fakeChannel{frames: frames, done: make(chan struct{})}
}

func (f *fakeChannel) Write(b []byte) (int, error) {
	f.writes = append(f.writes, append([]byte(nil), b...))
	return len(b), nil
}

func (f *fakeChannel) Read(b []byte) (int, error) {
	if len(f.frames) == 0 {
		<-f.done
		return 0, errChannelClosed
	}
	msg := f.frames[0]
	f.frames = f.frames[1:]
	return copy(b, msg), nil
}

func (f *fakeChannel) Close() error {
	select {
	case <-f.done:
	default:
		close(f.done)
	}
	return nil
}

func (f *fakeChannel) RemoteAddr() btsdp.Addr        { return f.remote }
func (f *fakeChannel) Disconnected() <-chan struct{} { return f.done }

var errChannelClosed = &testChannelError{"fakeChannel: closed"}

type testChannelError struct{ s string }

func (e *testChannelError) Error() string { return e.s }

func buildPDU(pduID byte, tid uint16, body []byte) []byte {
	pkt := make([]byte, pduHeaderLen+len(body))
	h := pduHeader(pkt[:pduHeaderLen])
	h.SetPDUID(pduID)
	h.SetTransactionID(tid)
	h.SetParamLen(uint16(len(body)))
	copy(pkt[pduHeaderLen:], body)
	return pkt
}

func searchAttrRspFrame(tid uint16, listBytes []byte, cont []byte) []byte {
	body := make([]byte, 0, 2+len(listBytes)+1+len(cont))
	body = append(body, byte(len(listBytes)>>8), byte(len(listBytes)))
	body = append(body, listBytes...)
	body = append(body, byte(len(cont)))
	body = append(body, cont...)
	return buildPDU(byte(btsdp.PDUServiceSearchAttrRsp), tid, body)
}

func searchRspFrame(tid uint16, total, current uint16, handles []uint32, cont []byte) []byte {
	body := make([]byte, 0, 4+len(handles)*4+1+len(cont))
	body = append(body, byte(total>>8), byte(total), byte(current>>8), byte(current))
	for _, h := range handles {
		body = append(body, byte(h>>24), byte(h>>16), byte(h>>8), byte(h))
	}
	body = append(body, byte(len(cont)))
	body = append(body, cont...)
	return buildPDU(byte(btsdp.PDUServiceSearchRsp), tid, body)
}

func attrRspFrame(tid uint16, listBytes []byte, cont []byte) []byte {
	body := make([]byte, 0, 2+len(listBytes)+1+len(cont))
	body = append(body, byte(len(listBytes)>>8), byte(len(listBytes)))
	body = append(body, listBytes...)
	body = append(body, byte(len(cont)))
	body = append(body, cont...)
	return buildPDU(byte(btsdp.PDUServiceAttrRsp), tid, body)
}

// oneRecordAttrSeq is a single record's own attribute sequence, the
// shape SDP_ServiceAttributeResponse (Flow A) carries directly.
func oneRecordAttrSeq() []byte {
	rec := attrPair(btsdp.AttrIDServiceRecordHandle, elemUint16(0x4242))
	return elemSeq(rec)
}

// oneRecordAttrList wraps oneRecordAttrSeq in an outer sequence, the
// shape SDP_ServiceSearchAttributeResponse (Flow B) carries: a list of
// per-record attribute sequences.
func oneRecordAttrList() []byte {
	return elemSeq(oneRecordAttrSeq())
}

func TestDiscoverFlowBSingleRecord(t *testing.T) {
	listBytes := oneRecordAttrList()
	ch := newFakeChannel(searchAttrRspFrame(0, listBytes, nil))

	result, status := Discover(ch, DiscoverRequest{
		UUIDs:      []btsdp.UUID{btsdp.UUID16(0x1101)},
		AttrSearch: true,
	}, btsdp.NopLogger{})

	require.Equal(t, btsdp.StatusSuccess, status)
	require.Len(t, result.Records(), 1)
	require.Equal(t, uint16(0x4242), result.Records()[0].Attrs[0].U16)
}

func TestDiscoverFlowBContinuation(t *testing.T) {
	listBytes := oneRecordAttrList()
	split := len(listBytes) / 2
	require.Greater(t, split, 0)

	contToken := []byte{0xAB, 0xCD}
	frame1 := searchAttrRspFrame(0, listBytes[:split], contToken)
	frame2 := searchAttrRspFrame(1, listBytes[split:], nil)
	ch := newFakeChannel(frame1, frame2)

	result, status := Discover(ch, DiscoverRequest{
		UUIDs:      []btsdp.UUID{btsdp.UUID16(0x1101)},
		AttrSearch: true,
	}, btsdp.NopLogger{})

	require.Equal(t, btsdp.StatusSuccess, status)
	require.Len(t, result.Records(), 1)

	// The continuation token from frame1 must have been echoed back
	// verbatim in the second request.
	require.Len(t, ch.writes, 2)
	secondReq := ch.writes[1]
	require.Contains(t, string(secondReq), string(contToken))
}

func TestDiscoverFlowBDBFull(t *testing.T) {
	listBytes := oneRecordAttrList()
	ch := newFakeChannel(searchAttrRspFrame(0, listBytes, nil))

	db := NewDB(recNodeSize) // enough for the record, nothing for its attribute
	_, status := Discover(ch, DiscoverRequest{
		UUIDs:      []btsdp.UUID{btsdp.UUID16(0x1101)},
		AttrSearch: true,
		DB:         db,
	}, btsdp.NopLogger{})

	require.Equal(t, btsdp.StatusDBFull, status)
}

func TestDiscoverFlowANoRecsMatch(t *testing.T) {
	ch := newFakeChannel(searchRspFrame(0, 0, 0, nil, nil))

	_, status := Discover(ch, DiscoverRequest{
		UUIDs: []btsdp.UUID{btsdp.UUID16(0x1101)},
	}, btsdp.NopLogger{})

	require.Equal(t, btsdp.StatusNoRecsMatch, status)
}

func TestDiscoverFlowAEndToEnd(t *testing.T) {
	recBytes := oneRecordAttrSeq()
	search := searchRspFrame(0, 1, 1, []uint32{0x00000001}, nil)
	attr := attrRspFrame(1, recBytes, nil)
	ch := newFakeChannel(search, attr)

	result, status := Discover(ch, DiscoverRequest{
		UUIDs: []btsdp.UUID{btsdp.UUID16(0x1101)},
	}, btsdp.NopLogger{})

	require.Equal(t, btsdp.StatusSuccess, status)
	require.Len(t, result.Records(), 1)
}

func TestDiscoverOversizedContinuation(t *testing.T) {
	listBytes := oneRecordAttrList()
	tooLong := make([]byte, btsdp.MaxContinuationLen+1)
	ch := newFakeChannel(searchAttrRspFrame(0, listBytes, tooLong))

	_, status := Discover(ch, DiscoverRequest{
		UUIDs:      []btsdp.UUID{btsdp.UUID16(0x1101)},
		AttrSearch: true,
	}, btsdp.NopLogger{})

	require.Equal(t, btsdp.StatusInvalidContState, status)
}

func TestDiscoverDisconnectBeforeResponse(t *testing.T) {
	ch := newFakeChannel() // no frames queued; Read blocks on done
	go func() {
		time.Sleep(20 * time.Millisecond)
		ch.Close()
	}()

	_, status := Discover(ch, DiscoverRequest{
		UUIDs: []btsdp.UUID{btsdp.UUID16(0x1101)},
	}, btsdp.NopLogger{}, InactivityTimeout(time.Second))

	require.Equal(t, btsdp.StatusDisconnected, status)
}

func TestDiscoverInactivityTimeout(t *testing.T) {
	ch := newFakeChannel() // never responds
	defer ch.Close()

	_, status := Discover(ch, DiscoverRequest{
		UUIDs: []btsdp.UUID{btsdp.UUID16(0x1101)},
	}, btsdp.NopLogger{}, InactivityTimeout(20*time.Millisecond))

	require.Equal(t, btsdp.StatusTimeout, status)
}
