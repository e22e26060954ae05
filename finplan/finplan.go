// Package finplan implements the payment-plan DSL used by contract accounts
// to escrow tokens until a witness (a timestamp or a signing key) satisfies
// the conditions attached to the plan.
//
// A Plan is a small expression tree of three shapes: Pay (an unconditional
// payout), After (a single condition gating a nested plan), and Or (two
// alternative condition/plan branches, used to build cancellable plans).
// ApplyWitness mutates the tree in place as conditions are satisfied;
// FinalPayment reports the concrete payout once the tree has reduced to Pay.
package finplan

import "time"

// Pubkey is a 32-byte opaque identity.
type Pubkey [32]byte

// Payment is a concrete, unconditional transfer.
type Payment struct {
	Tokens int64
	To     Pubkey
}

// WitnessKind distinguishes the two forms of evidence a plan can consume.
type WitnessKind uint8

const (
	WitnessTimestamp WitnessKind = iota
	WitnessSignature
)

// Witness is external evidence presented to ApplyWitness: either a dated
// timestamp attested by Key, or a bare signature from Key.
type Witness struct {
	Kind WitnessKind
	Key  Pubkey
	At   time.Time // meaningful only when Kind == WitnessTimestamp
}

type conditionKind uint8

const (
	condTimestamp conditionKind = iota
	condSignature
)

type condition struct {
	kind  conditionKind
	key   Pubkey
	after time.Time // meaningful only when kind == condTimestamp
}

func (c condition) satisfiedBy(w Witness) bool {
	switch c.kind {
	case condTimestamp:
		return w.Kind == WitnessTimestamp && w.Key == c.key && !w.At.Before(c.after)
	case condSignature:
		return w.Kind == WitnessSignature && w.Key == c.key
	default:
		return false
	}
}

type nodeKind uint8

const (
	nodePay nodeKind = iota
	nodeAfter
	nodeOr
)

// Plan is a node in the payment-plan tree. The zero value is not a valid
// plan; construct one with Trivial, OnSignature, OnDate, or OnDateWithCancel.
type Plan struct {
	kind nodeKind

	pay Payment // nodePay

	cond condition // nodeAfter
	next *Plan     // nodeAfter

	condA condition // nodeOr, branch A
	planA *Plan
	condB condition // nodeOr, branch B
	planB *Plan
}

// Trivial returns a plan that has already reduced to a concrete payment;
// FinalPayment on it succeeds immediately with no witness required.
func Trivial(to Pubkey, tokens int64) *Plan {
	return &Plan{kind: nodePay, pay: Payment{Tokens: tokens, To: to}}
}

// OnSignature returns a plan that pays to `to` once `signer` presents a
// signature witness.
func OnSignature(signer Pubkey, to Pubkey, tokens int64) *Plan {
	return &Plan{
		kind: nodeAfter,
		cond: condition{kind: condSignature, key: signer},
		next: Trivial(to, tokens),
	}
}

// OnDate returns a plan that pays to `to` once `witness` attests a timestamp
// at or after `after`.
func OnDate(after time.Time, witness Pubkey, to Pubkey, tokens int64) *Plan {
	return &Plan{
		kind: nodeAfter,
		cond: condition{kind: condTimestamp, key: witness, after: after},
		next: Trivial(to, tokens),
	}
}

// OnDateWithCancel returns a plan paying `to` once `witness` attests a
// timestamp at or after `after`, OR paying `cancelTo` once `cancelSigner`
// presents a signature first. Whichever condition is satisfied first by
// ApplyWitness wins; the other branch is discarded.
func OnDateWithCancel(after time.Time, witness Pubkey, to Pubkey, cancelSigner Pubkey, cancelTo Pubkey, tokens int64) *Plan {
	return &Plan{
		kind:  nodeOr,
		condA: condition{kind: condTimestamp, key: witness, after: after},
		planA: Trivial(to, tokens),
		condB: condition{kind: condSignature, key: cancelSigner},
		planB: Trivial(cancelTo, tokens),
	}
}

// ApplyWitness mutates the plan in place, reducing it by one step if w
// satisfies the condition currently gating it. Applying a witness to an
// already-trivial (Pay) plan, or one whose condition isn't satisfied, is a
// no-op.
func (p *Plan) ApplyWitness(w Witness) {
	if p == nil {
		return
	}
	switch p.kind {
	case nodePay:
		return
	case nodeAfter:
		if p.cond.satisfiedBy(w) {
			*p = *p.next
		}
	case nodeOr:
		switch {
		case p.condA.satisfiedBy(w):
			*p = *p.planA
		case p.condB.satisfiedBy(w):
			*p = *p.planB
		}
	}
}

// FinalPayment reports the plan's concrete payout, if it has reduced to one.
func (p *Plan) FinalPayment() (Payment, bool) {
	if p != nil && p.kind == nodePay {
		return p.pay, true
	}
	return Payment{}, false
}
