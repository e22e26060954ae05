// Package fincontract implements the FinPlan contract engine: a
// deterministic, pure function that applies one transaction's instruction
// to a small vector of accounts, enforcing debit/credit atomicity and the
// contract account's witness-driven state machine.
package fincontract

import (
	"errors"
	"fmt"

	"github.com/xpz-network/validatorcore/finplan"
)

// Pubkey is a 32-byte opaque identity, shared with the finplan DSL.
type Pubkey = finplan.Pubkey

// Account mirrors the on-chain account the engine reads and mutates.
// Userdata is opaque outside this package's own contract-state framing;
// the runtime never interprets it for other program owners.
type Account struct {
	Tokens       int64
	Userdata     []byte
	OwnerProgram Pubkey
}

// Transaction is the external, already-verified transaction the engine
// consumes. Signature verification and last_id/blockhash freshness are the
// caller's responsibility (out of scope for this package).
type Transaction struct {
	Keys      []Pubkey
	Userdata  []byte
	LastID    [32]byte
	ProgramID Pubkey
	Signature []byte
}

// ProgramID is the fixed FinPlan program identity: one followed by 31 zero
// bytes.
var ProgramID = Pubkey{0x01}

// CheckID reports whether p is the FinPlan program ID.
func CheckID(p Pubkey) bool { return p == ProgramID }

// Sentinel errors for encoding faults and debit violations without a
// meaningful payload.
var (
	ErrNegativeTokens            = errors.New("fincontract: negative token amount")
	ErrFailedWitness             = errors.New("fincontract: witness application failed") // reserved; never emitted
	ErrUserdataTooSmall          = errors.New("fincontract: userdata buffer too small")
	ErrUserdataDeserializeFailure = errors.New("fincontract: userdata deserialize failure")
)

// InsufficientFundsError reports that an account's balance is below the
// amount a NewContract instruction attempted to debit from it.
type InsufficientFundsError struct{ Account Pubkey }

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("fincontract: insufficient funds in %x", e.Account)
}

// ContractAlreadyExistsError reports an attempt to initialize a contract
// account that already hosts an initialized, non-trivial contract.
type ContractAlreadyExistsError struct{ Account Pubkey }

func (e *ContractAlreadyExistsError) Error() string {
	return fmt.Sprintf("fincontract: contract already exists at %x", e.Account)
}

// ContractNotPendingError reports a witness applied to a contract that has
// already finalized (or never had a pending plan).
type ContractNotPendingError struct{ Account Pubkey }

func (e *ContractNotPendingError) Error() string {
	return fmt.Sprintf("fincontract: contract not pending at %x", e.Account)
}

// UninitializedContractError reports a witness applied to a contract
// account whose userdata doesn't deserialize to an initialized state.
type UninitializedContractError struct{ Account Pubkey }

func (e *UninitializedContractError) Error() string {
	return fmt.Sprintf("fincontract: uninitialized contract at %x", e.Account)
}

// SourceIsPendingContractError reports that the transaction's source
// account (keys[0]) is itself hosting a pending contract and so cannot be
// debited as a plain funding source.
type SourceIsPendingContractError struct{ Account Pubkey }

func (e *SourceIsPendingContractError) Error() string {
	return fmt.Sprintf("fincontract: source %x is itself a pending contract", e.Account)
}

// DestinationMissingError reports that a witness produced a final payment
// addressed to Want, but the transaction's keys[2] didn't match it.
type DestinationMissingError struct{ Want Pubkey }

func (e *DestinationMissingError) Error() string {
	return fmt.Sprintf("fincontract: destination missing, want %x", e.Want)
}
