package fincontract

import (
	"bytes"
	"testing"
	"time"

	"github.com/xpz-network/validatorcore/finplan"
)

// TestEncodeNewContractMatchesReference pins the full Instruction encoding
// (tag plus Contract{tokens,plan}) for fin_plan_new(tokens=192), per
// spec.md's S4 (SDK byte-exact) scenario.
func TestEncodeNewContractMatchesReference(t *testing.T) {
	dst := finplan.Pubkey{1, 1, 1, 4, 5, 6, 7, 8, 9, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 9, 8, 7, 6, 5, 4, 1, 1, 1}

	instr := &Instruction{Kind: InstrNewContract, Tokens: 192, Plan: finplan.Trivial(dst, 192)}
	got := EncodeInstruction(instr)

	want := []byte{0, 0, 0, 0, 192, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 192, 0, 0, 0, 0, 0, 0, 0}
	want = append(want, dst[:]...)

	if !bytes.Equal(got, want) {
		t.Fatalf("mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestEncodeApplyTimestampMatchesReference(t *testing.T) {
	when, err := time.Parse(time.RFC3339, "2016-07-08T09:10:11Z")
	if err != nil {
		t.Fatal(err)
	}
	instr := &Instruction{Kind: InstrApplyTimestamp, At: when}
	got := EncodeInstruction(instr)

	want := []byte{1, 0, 0, 0, 20, 0, 0, 0, 0, 0, 0, 0}
	want = append(want, []byte("2016-07-08T09:10:11Z")...)

	if !bytes.Equal(got, want) {
		t.Fatalf("mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestEncodeApplySignatureMatchesReference(t *testing.T) {
	got := EncodeInstruction(&Instruction{Kind: InstrApplySignature})
	want := []byte{2, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("mismatch: got %v want %v", got, want)
	}
}

func TestDecodeInstructionRoundTrip(t *testing.T) {
	to := finplan.Pubkey{7}
	instr := &Instruction{Kind: InstrNewContract, Tokens: 10, Plan: finplan.Trivial(to, 10)}
	enc := EncodeInstruction(instr)

	dec, err := DecodeInstruction(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.Kind != InstrNewContract || dec.Tokens != 10 {
		t.Fatalf("got %+v", dec)
	}
	pay, ok := dec.Plan.FinalPayment()
	if !ok || pay.Tokens != 10 || pay.To != to {
		t.Errorf("got %+v ok=%v", pay, ok)
	}
}

func TestDecodeInstructionTooShort(t *testing.T) {
	if _, err := DecodeInstruction([]byte{0, 0}); err == nil {
		t.Error("want error for truncated instruction")
	}
}
