// Package clusterstate is the Write Stage's view of cluster membership and
// the leader schedule: this node's identity, the rotation interval, a
// round-robin scheduled-leader oracle, and a sink for votes the writer
// observes in committed entries.
//
// The real gossip/membership protocol this models (BlockThread) is out of
// scope here — only the narrow interface the write stage actually consumes
// is implemented, as a concrete, testable stand-in.
package clusterstate

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/xpz-network/validatorcore/finplan"
)

// Pubkey is shared with the finplan DSL and the fincontract engine.
type Pubkey = finplan.Pubkey

// Vote is the opaque unit the write stage registers with cluster state
// after extracting it from a committed entry batch.
type Vote struct {
	Validator Pubkey
	Height    uint64
	BlockHash [32]byte
}

// inmemoryLeaders bounds the LRU cache of resolved leader-schedule epochs,
// mirroring consensus/dpos's inmemorySnapshots sizing.
const inmemoryLeaders = 128

// State is a round-robin leader schedule over a fixed validator set.
type State struct {
	mu sync.RWMutex

	self             Pubkey
	rotationInterval uint64
	validators       []Pubkey // fixed round-robin order

	leaders *lru.ARCCache // epoch (height/interval) -> Pubkey

	votes []Vote
}

// New builds cluster state for a fixed validator set. rotationInterval is
// read once at WS startup per spec; validators must be non-empty for
// ScheduledLeader to resolve anything.
func New(self Pubkey, rotationInterval uint64, validators []Pubkey) (*State, error) {
	leaders, err := lru.NewARC(inmemoryLeaders)
	if err != nil {
		return nil, err
	}
	return &State{
		self:             self,
		rotationInterval: rotationInterval,
		validators:       append([]Pubkey(nil), validators...),
		leaders:          leaders,
	}, nil
}

// MyID returns this node's identity.
func (s *State) MyID() Pubkey { return s.self }

// LeaderRotationInterval returns the fixed number of entries per leader
// epoch.
func (s *State) LeaderRotationInterval() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rotationInterval
}

// ScheduledLeader resolves the node authorized to author entries at height,
// or false if no validator set is configured.
func (s *State) ScheduledLeader(height uint64) (Pubkey, bool) {
	s.mu.RLock()
	n := len(s.validators)
	interval := s.rotationInterval
	s.mu.RUnlock()
	if n == 0 || interval == 0 {
		return Pubkey{}, false
	}

	epoch := height / interval
	if cached, ok := s.leaders.Get(epoch); ok {
		return cached.(Pubkey), true
	}
	leader := s.validators[epoch%uint64(n)]
	s.leaders.Add(epoch, leader)
	return leader, true
}

// InsertVotes registers votes extracted from a committed entry batch. Per
// spec's ordering requirement, callers must insert votes for a batch before
// writing that batch to the ledger.
func (s *State) InsertVotes(vs []Vote) {
	if len(vs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = append(s.votes, vs...)
}

// Votes returns a snapshot of all votes inserted so far.
func (s *State) Votes() []Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Vote(nil), s.votes...)
}
