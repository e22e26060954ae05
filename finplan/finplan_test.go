package finplan

import (
	"testing"
	"time"
)

func pk(b byte) Pubkey {
	var p Pubkey
	p[0] = b
	return p
}

func TestTrivialFinalPaymentImmediate(t *testing.T) {
	p := Trivial(pk(0x01), 100)
	pay, ok := p.FinalPayment()
	if !ok {
		t.Fatal("want immediate final payment")
	}
	if pay.Tokens != 100 || pay.To != pk(0x01) {
		t.Errorf("got %+v", pay)
	}
}

func TestOnSignatureRequiresWitness(t *testing.T) {
	signer := pk(0x02)
	to := pk(0x03)
	p := OnSignature(signer, to, 50)

	if _, ok := p.FinalPayment(); ok {
		t.Fatal("plan must not finalize before witness")
	}

	// Wrong signer: no reduction.
	p.ApplyWitness(Witness{Kind: WitnessSignature, Key: pk(0x09)})
	if _, ok := p.FinalPayment(); ok {
		t.Fatal("wrong signer must not reduce the plan")
	}

	p.ApplyWitness(Witness{Kind: WitnessSignature, Key: signer})
	pay, ok := p.FinalPayment()
	if !ok || pay.Tokens != 50 || pay.To != to {
		t.Errorf("got %+v ok=%v", pay, ok)
	}
}

func TestOnDateWithCancelPrimaryPath(t *testing.T) {
	witness := pk(0x10)
	to := pk(0x11)
	cancelSigner := pk(0x12)
	cancelTo := pk(0x13)

	when := mustDate("2016-07-08T09:10:11Z")
	p := OnDateWithCancel(when, witness, to, cancelSigner, cancelTo, 77)

	// Wrong witness key presents the timestamp: no reduction.
	p.ApplyWitness(Witness{Kind: WitnessTimestamp, Key: pk(0x99), At: when})
	if _, ok := p.FinalPayment(); ok {
		t.Fatal("unrelated witness must not satisfy either branch")
	}

	p.ApplyWitness(Witness{Kind: WitnessTimestamp, Key: witness, At: when})
	pay, ok := p.FinalPayment()
	if !ok || pay.To != to || pay.Tokens != 77 {
		t.Errorf("got %+v ok=%v", pay, ok)
	}
}

func TestOnDateWithCancelCancelPath(t *testing.T) {
	witness := pk(0x10)
	to := pk(0x11)
	cancelSigner := pk(0x12)
	cancelTo := pk(0x13)

	when := mustDate("2016-07-08T09:10:11Z")
	p := OnDateWithCancel(when, witness, to, cancelSigner, cancelTo, 77)

	p.ApplyWitness(Witness{Kind: WitnessSignature, Key: cancelSigner})
	pay, ok := p.FinalPayment()
	if !ok || pay.To != cancelTo || pay.Tokens != 77 {
		t.Errorf("got %+v ok=%v", pay, ok)
	}
}

func mustDate(s string) time.Time {
	tt, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return tt
}
