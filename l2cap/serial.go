package l2cap

import (
	"encoding/binary"
	"io"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"

	"github.com/corvid-labs/btsdp"
)

// DefaultBaudRate matches the teacher's UART bring-up default for an
// HCI-over-serial controller.
const DefaultBaudRate = 115200

// SerialOptions configures NewSerialChannel.
type SerialOptions struct {
	PortName string
	BaudRate uint
}

// DefaultSerialOptions returns sane defaults for a serial-attached
// controller, following the teacher's DefaultSerialOptions idiom.
func DefaultSerialOptions(path string) SerialOptions {
	return SerialOptions{PortName: path, BaudRate: DefaultBaudRate}
}

const (
	l2capSignalingCID  = 0x0001
	signalingSourceCID = 0x0040

	codeConnectReq = 0x02
	codeConnectRsp = 0x03
	codeConfigReq  = 0x04
	codeConfigRsp  = 0x05
)

// SerialChannel is a Channel layered over a UART-attached controller:
// jacobsa/go-serial supplies the byte pipe, and a minimal
// connection-oriented L2CAP framer — just enough signaling to stand
// up a channel to PSM 1, the SDP server — runs on top. Full L2CAP
// signaling (config option negotiation, disconnects, flow control) is
// out of scope; this exists to make the discovery engine exercisable
// end to end over a real transport, not to be a complete L2CAP stack.
type SerialChannel struct {
	rw     io.ReadWriteCloser
	remote btsdp.Addr
	cid    uint16
	done   chan struct{}
}

// NewSerialChannel opens the serial port and performs the signaling
// handshake (connect request/response, configure request/response)
// needed to open a connection-oriented channel to the remote's SDP
// server.
func NewSerialChannel(opts SerialOptions, remote btsdp.Addr) (*SerialChannel, error) {
	rw, err := serial.Open(serial.OpenOptions{
		PortName:        opts.PortName,
		BaudRate:        opts.BaudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "sdp: open serial port")
	}

	c := &SerialChannel{rw: rw, remote: remote, done: make(chan struct{})}
	if err := c.signalConnect(); err != nil {
		rw.Close()
		return nil, err
	}
	return c, nil
}

func (c *SerialChannel) signalConnect() error {
	if _, err := c.rw.Write(buildConnectReq(uint16(btsdp.PSMSDP), signalingSourceCID)); err != nil {
		return errors.Wrap(err, "sdp: send l2cap connect req")
	}

	rsp := make([]byte, 64)
	n, err := c.rw.Read(rsp)
	if err != nil {
		return errors.Wrap(err, "sdp: read l2cap connect rsp")
	}
	cid, err := parseConnectRsp(rsp[:n])
	if err != nil {
		return err
	}
	c.cid = cid

	if _, err := c.rw.Write(buildConfigReq(c.cid)); err != nil {
		return errors.Wrap(err, "sdp: send l2cap config req")
	}
	if _, err := c.rw.Read(rsp); err != nil {
		return errors.Wrap(err, "sdp: read l2cap config rsp")
	}
	return nil
}

func (c *SerialChannel) Write(b []byte) (int, error) { return c.rw.Write(b) }

func (c *SerialChannel) Read(b []byte) (int, error) { return c.rw.Read(b) }

func (c *SerialChannel) Close() error {
	err := c.rw.Close()
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	return err
}

func (c *SerialChannel) RemoteAddr() btsdp.Addr { return c.remote }

func (c *SerialChannel) Disconnected() <-chan struct{} { return c.done }

// wrapL2CAP prefixes payload with the basic L2CAP header (length,
// then destination channel ID, both little-endian).
func wrapL2CAP(cid uint16, payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint16(out[0:2], uint16(len(payload)))
	binary.LittleEndian.PutUint16(out[2:4], cid)
	copy(out[4:], payload)
	return out
}

func buildConnectReq(psm, sourceCID uint16) []byte {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint16(data[0:2], psm)
	binary.LittleEndian.PutUint16(data[2:4], sourceCID)
	sig := append([]byte{codeConnectReq, 1, byte(len(data)), byte(len(data) >> 8)}, data...)
	return wrapL2CAP(l2capSignalingCID, sig)
}

func parseConnectRsp(raw []byte) (uint16, error) {
	if len(raw) < 4+8 {
		return 0, errors.New("sdp: short l2cap connect rsp")
	}
	payload := raw[4:]
	if payload[0] != codeConnectRsp {
		return 0, errors.Errorf("sdp: unexpected l2cap signaling code 0x%02x", payload[0])
	}
	data := payload[4:]
	destCID := binary.LittleEndian.Uint16(data[0:2])
	result := binary.LittleEndian.Uint16(data[4:6])
	if result != 0 {
		return 0, errors.Errorf("sdp: l2cap connection refused, result %d", result)
	}
	return destCID, nil
}

func buildConfigReq(destCID uint16) []byte {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint16(data[0:2], destCID)
	sig := append([]byte{codeConfigReq, 2, byte(len(data)), byte(len(data) >> 8)}, data...)
	return wrapL2CAP(l2capSignalingCID, sig)
}
