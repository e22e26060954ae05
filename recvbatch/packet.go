// Package recvbatch implements the dedicated batch receiver: a UDP socket
// wrapper that fills a fixed-size slice of packets per call, using the
// kernel's batched receive path on Linux and a portable one-at-a-time
// fallback everywhere else.
package recvbatch

import "net"

// PacketDataSize is the maximum payload recvbatch reads per datagram.
const PacketDataSize = 1232

// NumRcvMmsgs bounds how many datagrams a single receive call may return,
// mirroring the reference implementation's batch size.
const NumRcvMmsgs = 16

// Meta carries the out-of-band data a receive call fills in per packet.
type Meta struct {
	Size int
	Addr *net.UDPAddr
}

// Packet is one fixed-capacity datagram buffer plus its metadata. Size 0
// means the slot wasn't filled by the most recent receive call.
type Packet struct {
	Data [PacketDataSize]byte
	Meta Meta
}

// NewPackets allocates n zeroed packets, ready to be passed to Receiver.Recv.
func NewPackets(n int) []Packet {
	return make([]Packet, n)
}

// Reset clears a packet's metadata between receive calls without
// reallocating its data buffer.
func (p *Packet) Reset() {
	p.Meta.Size = 0
	p.Meta.Addr = nil
}
