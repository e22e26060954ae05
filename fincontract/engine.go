package fincontract

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/xpz-network/validatorcore/finplan"
)

// ProcessTransaction deterministically applies tx's instruction to accounts,
// which must be indexed per the FinPlan convention: accounts[0] is the
// source/witness-signer, accounts[1] is the contract account, accounts[2]
// is the destination (when the instruction produces a payment).
//
// On any error, all account mutations are discarded (per the design note
// in §9: a failed credit phase must not leave a successful debit applied).
func ProcessTransaction(tx *Transaction, accounts []*Account) error {
	snapshot := snapshotAccounts(accounts)
	if err := processTransaction(tx, accounts); err != nil {
		restoreAccounts(accounts, snapshot)
		log.Trace("fincontract: transaction aborted", "err", err)
		return err
	}
	return nil
}

func processTransaction(tx *Transaction, accounts []*Account) error {
	instr, err := DecodeInstruction(tx.Userdata)
	if err != nil {
		log.Trace("fincontract: userdata decode failed", "err", err)
		return ErrUserdataDeserializeFailure
	}
	if err := applyDebits(tx, accounts, instr); err != nil {
		return err
	}
	return applyCredits(tx, accounts, instr)
}

func applyDebits(tx *Transaction, accounts []*Account, instr *Instruction) error {
	if len(accounts[0].Userdata) > 0 {
		return &SourceIsPendingContractError{Account: tx.Keys[0]}
	}
	if instr.Kind != InstrNewContract {
		return nil
	}
	if instr.Tokens < 0 {
		return ErrNegativeTokens
	}
	if accounts[0].Tokens < instr.Tokens {
		return &InsufficientFundsError{Account: tx.Keys[0]}
	}
	accounts[0].Tokens -= instr.Tokens
	return nil
}

func applyCredits(tx *Transaction, accounts []*Account, instr *Instruction) error {
	switch instr.Kind {
	case InstrNewContract:
		return applyNewContractCredit(tx, accounts, instr)
	case InstrApplyTimestamp:
		w := finplan.Witness{Kind: finplan.WitnessTimestamp, Key: tx.Keys[0], At: instr.At}
		return applyWitnessCredit(tx, accounts, w)
	case InstrApplySignature:
		w := finplan.Witness{Kind: finplan.WitnessSignature, Key: tx.Keys[0]}
		return applyWitnessCredit(tx, accounts, w)
	case InstrNewVote:
		return nil
	}
	return nil
}

func applyNewContractCredit(tx *Transaction, accounts []*Account, instr *Instruction) error {
	ctxAcct := accounts[1]

	if pay, ok := instr.Plan.FinalPayment(); ok {
		// Trivial plan: pay out immediately, no contract state retained.
		ctxAcct.Tokens += pay.Tokens
		return nil
	}

	if existing, err := DeserializeState(ctxAcct.Userdata); err == nil && existing.Initialized {
		return &ContractAlreadyExistsError{Account: tx.Keys[1]}
	}

	state := FinPlanState{Initialized: true, PendingPlan: instr.Plan}
	buf, err := SerializeState(ctxAcct.Userdata, state)
	if err != nil {
		return err
	}
	ctxAcct.Userdata = buf
	ctxAcct.Tokens += instr.Tokens
	return nil
}

// applyWitnessCredit implements the witness routine: apply w to the
// contract's pending plan, then if it reduces to a concrete payment,
// validate the destination and move tokens.
func applyWitnessCredit(tx *Transaction, accounts []*Account, w finplan.Witness) error {
	ctxAcct := accounts[1]

	state, err := DeserializeState(ctxAcct.Userdata)
	if err != nil {
		return &UninitializedContractError{Account: tx.Keys[1]}
	}
	if state.PendingPlan == nil {
		return &ContractNotPendingError{Account: tx.Keys[1]}
	}
	if !state.Initialized {
		return &UninitializedContractError{Account: tx.Keys[1]}
	}

	state.PendingPlan.ApplyWitness(w)

	pay, ok := state.PendingPlan.FinalPayment()
	if !ok {
		buf, err := SerializeState(ctxAcct.Userdata, state)
		if err != nil {
			return err
		}
		ctxAcct.Userdata = buf
		return nil
	}

	if len(tx.Keys) < 3 || tx.Keys[2] != pay.To {
		return &DestinationMissingError{Want: pay.To}
	}

	state.PendingPlan = nil
	buf, err := SerializeState(ctxAcct.Userdata, state)
	if err != nil {
		return err
	}
	ctxAcct.Userdata = buf
	ctxAcct.Tokens -= pay.Tokens
	accounts[2].Tokens += pay.Tokens
	return nil
}

// GetBalance returns an account's spendable balance: 0 while a pending
// plan escrows its tokens, otherwise the raw token count. Accounts whose
// userdata doesn't deserialize (plain, non-contract accounts) report their
// raw tokens.
func GetBalance(acct *Account) int64 {
	state, err := DeserializeState(acct.Userdata)
	if err != nil {
		return acct.Tokens
	}
	if state.PendingPlan != nil {
		return 0
	}
	return acct.Tokens
}

type accountSnapshot struct {
	tokens   int64
	userdata []byte
}

func snapshotAccounts(accounts []*Account) []accountSnapshot {
	snaps := make([]accountSnapshot, len(accounts))
	for i, a := range accounts {
		snaps[i] = accountSnapshot{tokens: a.Tokens, userdata: append([]byte(nil), a.Userdata...)}
	}
	return snaps
}

func restoreAccounts(accounts []*Account, snaps []accountSnapshot) {
	for i, a := range accounts {
		a.Tokens = snaps[i].tokens
		a.Userdata = snaps[i].userdata
	}
}
