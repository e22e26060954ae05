//go:build !linux
// +build !linux

package recvbatch

import (
	"net"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// drainDeadline bounds how long the portable fallback keeps draining
// already-queued datagrams after the first one arrives, mirroring
// recvmmsg(2)'s MSG_WAITFORONE behavior without a kernel batch call.
const drainDeadline = 5 * time.Millisecond

// portableBatcher reads one datagram at a time: it blocks for the first,
// then drains whatever else is immediately available under a short
// deadline, matching the reference implementation's non-Linux fallback.
type portableBatcher struct {
	conn *net.UDPConn
}

func newRecvBatcher(conn *net.UDPConn) recvBatcher {
	return &portableBatcher{conn: conn}
}

func (b *portableBatcher) recvBatch(packets []Packet) (int, error) {
	count := len(packets)
	if count > NumRcvMmsgs {
		count = NumRcvMmsgs
	}
	if count == 0 {
		return 0, nil
	}

	i := 0
	for ; i < count; i++ {
		packets[i].Reset()
		if i == 1 {
			if err := b.conn.SetReadDeadline(time.Now().Add(drainDeadline)); err != nil {
				log.Warn("recvbatch: set read deadline failed", "err", err)
			}
		}
		n, addr, err := b.conn.ReadFromUDP(packets[i].Data[:])
		if err != nil {
			if i > 0 {
				break
			}
			return 0, err
		}
		packets[i].Meta.Size = n
		packets[i].Meta.Addr = addr
	}
	b.conn.SetReadDeadline(time.Time{})
	return i, nil
}
