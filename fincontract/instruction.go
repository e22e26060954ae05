package fincontract

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/xpz-network/validatorcore/finplan"
)

// InstructionKind tags the Instruction union. Values match the SDK's wire
// encoding exactly (little-endian u32) — see spec scenario S4.
type InstructionKind uint32

const (
	InstrNewContract InstructionKind = iota
	InstrApplyTimestamp
	InstrApplySignature
	InstrNewVote
)

const instructionDateLayout = time.RFC3339

// Instruction is the decoded form of a transaction's userdata.
type Instruction struct {
	Kind InstructionKind

	// NewContract
	Tokens int64
	Plan   *finplan.Plan

	// ApplyTimestamp
	At time.Time

	// NewVote
	VotePayload []byte
}

// EncodeInstruction produces the wire form of instr. NewContract,
// ApplyTimestamp, and ApplySignature match the reference SDK byte-for-byte.
func EncodeInstruction(instr *Instruction) []byte {
	var dst []byte
	dst = appendU32(dst, uint32(instr.Kind))
	switch instr.Kind {
	case InstrNewContract:
		dst = appendI64(dst, instr.Tokens)
		dst = finplan.Encode(dst, instr.Plan)
	case InstrApplyTimestamp:
		s := instr.At.UTC().Format(instructionDateLayout)
		dst = appendU64(dst, uint64(len(s)))
		dst = append(dst, s...)
	case InstrApplySignature:
		// no fields
	case InstrNewVote:
		dst = appendU64(dst, uint64(len(instr.VotePayload)))
		dst = append(dst, instr.VotePayload...)
	}
	return dst
}

// DecodeInstruction parses an Instruction from a transaction's userdata.
func DecodeInstruction(src []byte) (*Instruction, error) {
	if len(src) < 4 {
		return nil, fmt.Errorf("fincontract: instruction too short")
	}
	kind := InstructionKind(binary.LittleEndian.Uint32(src))
	body := src[4:]
	switch kind {
	case InstrNewContract:
		if len(body) < 8 {
			return nil, fmt.Errorf("fincontract: truncated NewContract tokens")
		}
		tokens := int64(binary.LittleEndian.Uint64(body))
		plan, _, err := finplan.Decode(body[8:])
		if err != nil {
			return nil, fmt.Errorf("fincontract: decode plan: %w", err)
		}
		return &Instruction{Kind: InstrNewContract, Tokens: tokens, Plan: plan}, nil
	case InstrApplyTimestamp:
		if len(body) < 8 {
			return nil, fmt.Errorf("fincontract: truncated ApplyTimestamp length")
		}
		slen := binary.LittleEndian.Uint64(body)
		body = body[8:]
		if uint64(len(body)) < slen {
			return nil, fmt.Errorf("fincontract: truncated ApplyTimestamp string")
		}
		t, err := time.Parse(instructionDateLayout, string(body[:slen]))
		if err != nil {
			return nil, fmt.Errorf("fincontract: invalid ApplyTimestamp date: %w", err)
		}
		return &Instruction{Kind: InstrApplyTimestamp, At: t}, nil
	case InstrApplySignature:
		return &Instruction{Kind: InstrApplySignature}, nil
	case InstrNewVote:
		if len(body) < 8 {
			return nil, fmt.Errorf("fincontract: truncated NewVote length")
		}
		plen := binary.LittleEndian.Uint64(body)
		body = body[8:]
		if uint64(len(body)) < plen {
			return nil, fmt.Errorf("fincontract: truncated NewVote payload")
		}
		payload := append([]byte(nil), body[:plen]...)
		return &Instruction{Kind: InstrNewVote, VotePayload: payload}, nil
	default:
		return nil, fmt.Errorf("fincontract: unknown instruction tag %d", kind)
	}
}

func appendU32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func appendU64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func appendI64(dst []byte, v int64) []byte {
	return appendU64(dst, uint64(v))
}
