package fincontract

import (
	"testing"
	"time"

	"github.com/xpz-network/validatorcore/finplan"
)

// TestSerializeDeserializeRoundTrip covers P5: serialize-then-deserialize
// yields the original state, given a buffer large enough to hold it.
func TestSerializeDeserializeRoundTrip(t *testing.T) {
	when, _ := time.Parse(time.RFC3339, "2016-07-08T09:10:11Z")
	plan := finplan.OnDate(when, finplan.Pubkey{1}, finplan.Pubkey{2}, 99)
	want := FinPlanState{Initialized: true, PendingPlan: plan}

	buf := make([]byte, 512)
	out, err := SerializeState(buf, want)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got, err := DeserializeState(out)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got.Initialized != want.Initialized {
		t.Fatalf("initialized mismatch: %v vs %v", got.Initialized, want.Initialized)
	}
	gotPay, gotOK := got.PendingPlan.FinalPayment()
	wantPay, wantOK := want.PendingPlan.FinalPayment()
	if gotOK != wantOK || gotPay != wantPay {
		t.Errorf("plan mismatch after round-trip: %+v (%v) vs %+v (%v)", gotPay, gotOK, wantPay, wantOK)
	}
}

// TestSerializeUserdataTooSmall verifies the buffer-capacity guard.
func TestSerializeUserdataTooSmall(t *testing.T) {
	state := FinPlanState{Initialized: true, PendingPlan: finplan.Trivial(finplan.Pubkey{1}, 1)}
	buf := make([]byte, 4)
	if _, err := SerializeState(buf, state); err != ErrUserdataTooSmall {
		t.Errorf("want ErrUserdataTooSmall, got %v", err)
	}
}

// TestDeserializeZeroFilledAccountFails matches S3: a freshly-allocated,
// zero-filled account's userdata must fail to deserialize (L < 2 guard).
func TestDeserializeZeroFilledAccountFails(t *testing.T) {
	buf := make([]byte, 512)
	if _, err := DeserializeState(buf); err != ErrUserdataDeserializeFailure {
		t.Errorf("want ErrUserdataDeserializeFailure, got %v", err)
	}
}

func TestDeserializeEmptyUserdataFails(t *testing.T) {
	if _, err := DeserializeState(nil); err != ErrUserdataDeserializeFailure {
		t.Errorf("want ErrUserdataDeserializeFailure, got %v", err)
	}
}

func TestDeserializeShorterThanPrefixPlusBodyFails(t *testing.T) {
	buf := make([]byte, 8)
	buf[0] = 100 // claims L=100 but nothing follows
	if _, err := DeserializeState(buf); err != ErrUserdataDeserializeFailure {
		t.Errorf("want ErrUserdataDeserializeFailure, got %v", err)
	}
}
