package writestage

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/xpz-network/validatorcore/clusterstate"
	"github.com/xpz-network/validatorcore/internal/metrics"
	"github.com/xpz-network/validatorcore/ledger"
	"github.com/xpz-network/validatorcore/votes"
)

// recvTimeout bounds how long iterate waits for the first batch of an
// iteration before treating the channel as idle (distinct from closed).
const recvTimeout = time.Second

// VoteSender produces this node's leader-vote blob for a given height. Key
// handling and vote transport encoding are out of scope here — callers wire
// in whatever signs and frames the vote.
type VoteSender interface {
	SendLeaderVote(height uint64) (votes.Blob, error)
}

// Service is the write stage: it drains batches of Entry off a channel,
// truncates each batch at the first leader-rotation boundary this node
// doesn't own, persists the retained prefix to the ledger, registers any
// votes observed, forwards the batch downstream, and exits with the
// terminal condition that ended the loop.
type Service struct {
	self    Pubkey
	cluster *clusterstate.State
	ledger  *ledger.Writer
	forward chan<- []Entry
	entries <-chan []Entry
	sender  VoteSender
	resp    *votes.Responder
	metrics *metrics.Counters

	interval    uint64
	entryHeight uint64
}

// NewService builds a write stage service. entryHeight is the height to
// resume writing at (ledger.Writer.Height() on recovery).
func NewService(self Pubkey, cluster *clusterstate.State, lw *ledger.Writer, entries <-chan []Entry, forward chan<- []Entry, sender VoteSender, resp *votes.Responder, m *metrics.Counters, entryHeight uint64) *Service {
	return &Service{
		self:        self,
		cluster:     cluster,
		ledger:      lw,
		entries:     entries,
		forward:     forward,
		sender:      sender,
		resp:        resp,
		metrics:     m,
		interval:    cluster.LeaderRotationInterval(),
		entryHeight: entryHeight,
	}
}

// Run drives the stage until a terminal condition is reached. The leader
// vote is sent once per loop pass, after iterate, regardless of whether this
// pass landed on a rotation boundary — it is not conditioned on the
// boundary check above it.
func (s *Service) Run() ReturnType {
	for {
		if s.interval != 0 && s.entryHeight%s.interval == 0 {
			leader, ok := s.cluster.ScheduledLeader(s.entryHeight)
			if !ok || leader != s.self {
				log.Info("writestage: not scheduled leader at boundary, exiting", "height", s.entryHeight)
				return LeaderRotation
			}
		}

		rt, done := s.iterate()

		if err := s.sendLeaderVote(s.entryHeight); err != nil {
			log.Warn("writestage: leader vote failed", "height", s.entryHeight, "err", err)
		}

		if done {
			return rt
		}
	}
}

// iterate performs one receive-accumulate-commit cycle: it blocks briefly
// for the first batch, then drains any further batches already queued
// without blocking, truncating each at a rotation boundary before moving on
// to the next. It returns done=true once a terminal condition is hit.
func (s *Service) iterate() (rt ReturnType, done bool) {
	first, ok := s.recvFirst()
	if !ok {
		return ChannelDisconnected, true
	}
	if first == nil {
		// Timed out with nothing waiting; loop again.
		return 0, false
	}

	// height is the projected entry height used purely to find rotation
	// boundaries across the batches accumulated in this iteration; it never
	// touches s.entryHeight, which only advances in commitAll once a batch
	// has actually been written.
	height := s.entryHeight

	var batches [][]Entry
	truncated, rotated := s.truncateBatch(height, first)
	height += uint64(len(truncated))
	if len(truncated) > 0 {
		batches = append(batches, truncated)
	}
	if rotated {
		if err := s.commitAll(batches); err != nil {
			return LedgerIOFailure, true
		}
		return LeaderRotation, true
	}

drain:
	for {
		select {
		case next, ok := <-s.entries:
			if !ok {
				if err := s.commitAll(batches); err != nil {
					return LedgerIOFailure, true
				}
				return ChannelDisconnected, true
			}
			tb, rot := s.truncateBatch(height, next)
			height += uint64(len(tb))
			if len(tb) > 0 {
				batches = append(batches, tb)
			}
			if rot {
				if err := s.commitAll(batches); err != nil {
					return LedgerIOFailure, true
				}
				return LeaderRotation, true
			}
		default:
			break drain
		}
	}

	if err := s.commitAll(batches); err != nil {
		return LedgerIOFailure, true
	}
	return 0, false
}

// recvFirst waits up to recvTimeout for a batch. A nil, true result means
// the wait timed out with the channel still open; ok is false only once the
// channel has been closed.
func (s *Service) recvFirst() (batch []Entry, ok bool) {
	select {
	case b, ok := <-s.entries:
		if !ok {
			return nil, false
		}
		s.metrics.EntriesReceived.Add(uint64(len(b)))
		return b, true
	case <-time.After(recvTimeout):
		return nil, true
	}
}

// truncateBatch trims batch to the prefix this node is entitled to author,
// starting at height. height is the caller's running projection for this
// iterate call, not the authoritative s.entryHeight — truncateBatch never
// mutates service state.
func (s *Service) truncateBatch(height uint64, batch []Entry) (retained []Entry, rotated bool) {
	if s.interval == 0 {
		return batch, false
	}
	k, rot := FindLeaderRotationIndex(height, s.interval, len(batch), s.self, s.cluster.ScheduledLeader)
	return batch[:k], rot
}

// commitAll registers each batch's votes, writes it to the ledger, and
// forwards it downstream, in per-batch order. Votes are inserted into
// cluster state before the corresponding batch is written, per the vote
// insertion ordering requirement. s.entryHeight only advances here, per
// batch, once that batch's write has actually succeeded — a batch that
// fails to write never advances the height, and entries queued behind it
// are never attempted.
func (s *Service) commitAll(batches [][]Entry) error {
	for _, batch := range batches {
		if len(batch) == 0 {
			continue
		}
		var vs []clusterstate.Vote
		ledgerEntries := make([]ledger.Entry, 0, len(batch))
		for _, e := range batch {
			vs = append(vs, e.Votes()...)
			enc, err := encodeEntryForLedger(e)
			if err != nil {
				s.metrics.WriteErrors.Add(1)
				return err
			}
			ledgerEntries = append(ledgerEntries, enc)
		}

		s.cluster.InsertVotes(vs)

		if _, err := s.ledger.WriteEntries(ledgerEntries); err != nil {
			s.metrics.WriteErrors.Add(1)
			return errors.Join(ErrLedgerIO, err)
		}
		s.entryHeight += uint64(len(batch))
		s.metrics.EntriesWritten.Add(uint64(len(batch)))

		if s.forward != nil {
			s.forward <- batch
			s.metrics.EntriesSent.Add(uint64(len(batch)))
		}
	}
	return nil
}

// encodeEntryForLedger serializes an Entry for ledger storage. The on-disk
// byte layout is explicitly out of scope, so plain JSON is sufficient here.
func encodeEntryForLedger(e Entry) (ledger.Entry, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return ledger.Entry(b), nil
}

// sendLeaderVote asks the configured VoteSender for this node's vote at
// height and enqueues it on the responder. A nil sender or responder is a
// silent no-op, for callers that haven't wired vote transport yet.
func (s *Service) sendLeaderVote(height uint64) error {
	if s.sender == nil || s.resp == nil {
		return nil
	}
	start := time.Now()
	blob, err := s.sender.SendLeaderVote(height)
	if err != nil {
		s.metrics.VoteErrors.Add(1)
		return err
	}
	s.resp.Enqueue(blob)
	s.metrics.VoteInsertLatencyMs.Add(uint64(time.Since(start).Milliseconds()))
	return nil
}
