// Package writestage implements the write stage: a long-running worker that
// drains a channel of entry batches, truncates them at leader-rotation
// boundaries, persists them to the ledger, forwards them downstream, and
// drives periodic leader votes.
package writestage

import (
	"github.com/xpz-network/validatorcore/clusterstate"
	"github.com/xpz-network/validatorcore/fincontract"
)

// Pubkey is shared across the core packages.
type Pubkey = clusterstate.Pubkey

// Entry is one ledger-committable unit: a batch of transactions plus any
// votes observed within it. The write stage is FCE-agnostic — it never
// interprets Transactions itself, only counts and forwards them.
type Entry struct {
	Transactions []fincontract.Transaction
	VoteList     []clusterstate.Vote
}

// Len reports the number of transactions in the entry.
func (e Entry) Len() int { return len(e.Transactions) }

// IsEmpty reports whether the entry carries no transactions.
func (e Entry) IsEmpty() bool { return len(e.Transactions) == 0 }

// Votes returns the votes observed within this entry.
func (e Entry) Votes() []clusterstate.Vote { return e.VoteList }

// ReturnType is the terminal condition the main loop exits with.
type ReturnType int

const (
	// LeaderRotation: the scheduled leader at a boundary isn't this node.
	LeaderRotation ReturnType = iota
	// ChannelDisconnected: the entry channel's upstream sender was dropped.
	ChannelDisconnected
	// LedgerIOFailure: a ledger write failed. Redesigned to be fatal to
	// the stage rather than merely logged — see SPEC_FULL's redesign
	// notes on ledger-write failure policy.
	LedgerIOFailure
)

func (r ReturnType) String() string {
	switch r {
	case LeaderRotation:
		return "LeaderRotation"
	case ChannelDisconnected:
		return "ChannelDisconnected"
	case LedgerIOFailure:
		return "LedgerIOFailure"
	default:
		return "Unknown"
	}
}
