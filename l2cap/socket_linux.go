// Package l2cap provides Channel implementations that satisfy the
// sdp.Channel collaborator spec.md §6 describes: connection
// establishment and the raw datagram transport are explicitly out of
// scope for the discovery engine itself, but a real module needs at
// least one concrete body to be exercisable outside of tests.
package l2cap

import (
	"encoding/binary"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/corvid-labs/btsdp"
)

// btProtoL2CAP is BTPROTO_L2CAP from <bluetooth/bluetooth.h>; the
// x/sys/unix package does not carry Bluetooth protocol constants, so
// it is reproduced here.
const btProtoL2CAP = 0

// sockaddrL2CAPLen is sizeof(struct sockaddr_l2cap) on Linux: a
// 2-byte family, a 2-byte PSM, a 6-byte device address, a 2-byte CID
// and a 1-byte address type, padded to 14 bytes.
const sockaddrL2CAPLen = 14

// SocketChannel is a Channel backed by a raw AF_BLUETOOTH/BTPROTO_L2CAP
// socket, connected to a remote device's SDP server on PSM 1. The
// kernel performs all L2CAP framing, so Read/Write are plain socket
// I/O; this mirrors the shape of the teacher's undelivered HCI
// `linux/hci/socket` transport, applied to a connection-oriented
// L2CAP socket instead of a raw HCI one.
type SocketChannel struct {
	fd     int
	remote btsdp.Addr
	done   chan struct{}
}

// NewSocketChannel opens a connection-oriented L2CAP socket to addr on
// the SDP well-known PSM (btsdp.PSMSDP) and returns it as a
// btsdp.Channel.
func NewSocketChannel(addr btsdp.Addr) (*SocketChannel, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_SEQPACKET, btProtoL2CAP)
	if err != nil {
		return nil, errors.Wrap(err, "sdp: open l2cap socket")
	}

	sa := packSockaddrL2CAP(addr, btsdp.PSMSDP)
	if _, _, errno := unix.Syscall(unix.SYS_CONNECT, uintptr(fd), uintptr(unsafe.Pointer(&sa[0])), uintptr(len(sa))); errno != 0 {
		unix.Close(fd)
		return nil, errors.Wrap(errno, "sdp: connect l2cap socket")
	}

	return &SocketChannel{fd: fd, remote: addr, done: make(chan struct{})}, nil
}

// packSockaddrL2CAP builds the raw struct sockaddr_l2cap bytes a
// connect(2) syscall expects. x/sys/unix has no Go type for it (only
// Bluetooth's HCI family gets one), so the layout is packed by hand.
func packSockaddrL2CAP(addr btsdp.Addr, psm uint16) []byte {
	b := make([]byte, sockaddrL2CAPLen)
	binary.LittleEndian.PutUint16(b[0:2], unix.AF_BLUETOOTH)
	binary.LittleEndian.PutUint16(b[2:4], psm)
	// bdaddr_t is stored least-significant-byte first on the wire,
	// the reverse of btsdp.Addr's most-significant-byte-first order.
	for i := 0; i < 6; i++ {
		b[4+i] = addr[5-i]
	}
	return b
}

func (c *SocketChannel) Write(b []byte) (int, error) { return unix.Write(c.fd, b) }

func (c *SocketChannel) Read(b []byte) (int, error) { return unix.Read(c.fd, b) }

func (c *SocketChannel) Close() error {
	err := unix.Close(c.fd)
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	return err
}

func (c *SocketChannel) RemoteAddr() btsdp.Addr { return c.remote }

func (c *SocketChannel) Disconnected() <-chan struct{} { return c.done }
