package fincontract

import (
	"encoding/binary"

	"github.com/xpz-network/validatorcore/finplan"
)

// stateSchemaVersion lets the body format evolve without disturbing the
// 8-byte length-prefix framing that the wire protocol commits to.
const stateSchemaVersion = 1

// FinPlanState is the logical content of a contract account's userdata.
type FinPlanState struct {
	Initialized bool
	PendingPlan *finplan.Plan // nil once finalized, or before first NewContract
}

// SerializeState writes s into buf using the contract account userdata
// layout: an 8-byte little-endian body length, followed by the body. buf is
// the account's existing userdata slice (reused for its capacity); the
// returned slice is what should replace Account.Userdata.
//
// Returns ErrUserdataTooSmall if buf cannot hold 8 plus the encoded body.
func SerializeState(buf []byte, s FinPlanState) ([]byte, error) {
	body := make([]byte, 0, 3)
	body = append(body, stateSchemaVersion)
	if s.Initialized {
		body = append(body, 1)
	} else {
		body = append(body, 0)
	}
	if s.PendingPlan != nil {
		body = append(body, 1)
		body = finplan.Encode(body, s.PendingPlan)
	} else {
		body = append(body, 0)
	}

	total := 8 + len(body)
	if len(buf) < total {
		return nil, ErrUserdataTooSmall
	}
	binary.LittleEndian.PutUint64(buf[:8], uint64(len(body)))
	copy(buf[8:8+len(body)], body)
	return buf, nil
}

// DeserializeState reads a FinPlanState out of a contract account's
// userdata. Fails with ErrUserdataDeserializeFailure if buf is shorter than
// 8 bytes, if the decoded body length L is less than 2 (guarding against a
// freshly-allocated, zero-filled account), or if buf is shorter than 8+L.
func DeserializeState(buf []byte) (FinPlanState, error) {
	if len(buf) < 8 {
		return FinPlanState{}, ErrUserdataDeserializeFailure
	}
	l := binary.LittleEndian.Uint64(buf[:8])
	if l < 2 {
		return FinPlanState{}, ErrUserdataDeserializeFailure
	}
	if uint64(len(buf)-8) < l {
		return FinPlanState{}, ErrUserdataDeserializeFailure
	}
	body := buf[8 : 8+l]
	if body[0] != stateSchemaVersion {
		return FinPlanState{}, ErrUserdataDeserializeFailure
	}
	initialized := body[1] != 0

	var plan *finplan.Plan
	if len(body) > 2 && body[2] != 0 {
		p, _, err := finplan.Decode(body[3:])
		if err != nil {
			return FinPlanState{}, ErrUserdataDeserializeFailure
		}
		plan = p
	}
	return FinPlanState{Initialized: initialized, PendingPlan: plan}, nil
}
