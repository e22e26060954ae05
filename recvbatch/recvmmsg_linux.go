//go:build linux
// +build linux

package recvbatch

import (
	"net"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

// recvTimeout bounds how long a call blocks waiting for the first packet.
const recvTimeout = time.Second

// linuxBatcher uses recvmmsg(2) via golang.org/x/net/ipv4's batch read,
// matching the reference implementation's Linux fast path.
type linuxBatcher struct {
	conn *net.UDPConn
	pc   *ipv4.PacketConn
}

func newRecvBatcher(conn *net.UDPConn) recvBatcher {
	return &linuxBatcher{conn: conn, pc: ipv4.NewPacketConn(conn)}
}

func (b *linuxBatcher) recvBatch(packets []Packet) (int, error) {
	count := len(packets)
	if count > NumRcvMmsgs {
		count = NumRcvMmsgs
	}
	if count == 0 {
		return 0, nil
	}

	msgs := make([]ipv4.Message, count)
	for i := range msgs {
		packets[i].Reset()
		msgs[i].Buffers = [][]byte{packets[i].Data[:]}
	}

	b.conn.SetReadDeadline(time.Now().Add(recvTimeout))

	// MSG_WAITFORONE: block until at least one datagram is ready, then
	// return everything already queued instead of waiting to fill count.
	n, err := b.pc.ReadBatch(msgs, unix.MSG_WAITFORONE)
	if err != nil && n == 0 {
		return 0, err
	}
	for i := 0; i < n; i++ {
		packets[i].Meta.Size = msgs[i].N
		if addr, ok := msgs[i].Addr.(*net.UDPAddr); ok {
			packets[i].Meta.Addr = addr
		}
	}
	return n, nil
}
