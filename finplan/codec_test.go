package finplan

import (
	"bytes"
	"testing"
)

// TestEncodeTrivialPlanMatchesReference pins the wire encoding of a trivial
// Pay plan: the plan part of fin_plan_new(tokens=192)'s NewContract
// instruction, i.e. the Pay tag, the tokens, and the destination key.
func TestEncodeTrivialPlanMatchesReference(t *testing.T) {
	// Destination bytes from spec.md's S4 scenario.
	to := Pubkey{1, 1, 1, 4, 5, 6, 7, 8, 9, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 9, 8, 7, 6, 5, 4, 1, 1, 1}

	plan := Trivial(to, 192)
	got := Encode(nil, plan)

	want := []byte{0, 0, 0, 0, 192, 0, 0, 0, 0, 0, 0, 0}
	want = append(want, to[:]...)

	if !bytes.Equal(got, want) {
		t.Fatalf("encoding mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestCodecRoundTripPay(t *testing.T) {
	to := Pubkey{9, 9, 9}
	plan := Trivial(to, 42)
	enc := Encode(nil, plan)
	dec, n, err := Decode(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != len(enc) {
		t.Fatalf("consumed %d, want %d", n, len(enc))
	}
	pay, ok := dec.FinalPayment()
	if !ok || pay.Tokens != 42 || pay.To != to {
		t.Errorf("got %+v ok=%v", pay, ok)
	}
}

func TestCodecRoundTripOrWithCancel(t *testing.T) {
	witness := Pubkey{1}
	to := Pubkey{2}
	cancelSigner := Pubkey{3}
	cancelTo := Pubkey{4}
	when := mustDate("2016-07-08T09:10:11Z")

	plan := OnDateWithCancel(when, witness, to, cancelSigner, cancelTo, 192)
	enc := Encode(nil, plan)
	dec, n, err := Decode(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != len(enc) {
		t.Fatalf("consumed %d of %d bytes", n, len(enc))
	}

	dec.ApplyWitness(Witness{Kind: WitnessSignature, Key: cancelSigner})
	pay, ok := dec.FinalPayment()
	if !ok || pay.To != cancelTo || pay.Tokens != 192 {
		t.Errorf("got %+v ok=%v", pay, ok)
	}
}

func TestDecodeTruncatedFails(t *testing.T) {
	if _, _, err := Decode([]byte{0, 0}); err != ErrTruncated {
		t.Errorf("want ErrTruncated, got %v", err)
	}
}

func TestDecodeUnknownTagFails(t *testing.T) {
	buf := []byte{99, 0, 0, 0}
	if _, _, err := Decode(buf); err == nil {
		t.Error("want error for unknown tag")
	}
}
