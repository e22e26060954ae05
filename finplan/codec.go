package finplan

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// ErrTruncated is returned by Decode when the input ends before a field
// that was declared present.
var ErrTruncated = errors.New("finplan: truncated encoding")

// ErrUnknownTag is returned by Decode when a node or condition tag isn't one
// this package knows how to interpret.
var ErrUnknownTag = errors.New("finplan: unknown tag")

const dateLayout = time.RFC3339

// Encode appends the wire encoding of p to dst and returns the result.
// Layout, little-endian throughout:
//
//	Pay (tag 0):   tag u32 | tokens i64 | to [32]byte
//	After (tag 1): tag u32 | condition   | next Plan
//	Or (tag 2):    tag u32 | conditionA  | planA | conditionB | planB
//
// condition: kind u32 | (Timestamp: len u64 ∥ RFC3339 bytes, key [32]byte)
//
//	| (Signature: key [32]byte)
func Encode(dst []byte, p *Plan) []byte {
	switch p.kind {
	case nodePay:
		dst = appendU32(dst, uint32(nodePay))
		dst = appendI64(dst, p.pay.Tokens)
		dst = append(dst, p.pay.To[:]...)
	case nodeAfter:
		dst = appendU32(dst, uint32(nodeAfter))
		dst = encodeCondition(dst, p.cond)
		dst = Encode(dst, p.next)
	case nodeOr:
		dst = appendU32(dst, uint32(nodeOr))
		dst = encodeCondition(dst, p.condA)
		dst = Encode(dst, p.planA)
		dst = encodeCondition(dst, p.condB)
		dst = Encode(dst, p.planB)
	}
	return dst
}

func encodeCondition(dst []byte, c condition) []byte {
	switch c.kind {
	case condTimestamp:
		dst = appendU32(dst, uint32(condTimestamp))
		s := c.after.UTC().Format(dateLayout)
		dst = appendU64(dst, uint64(len(s)))
		dst = append(dst, s...)
		dst = append(dst, c.key[:]...)
	case condSignature:
		dst = appendU32(dst, uint32(condSignature))
		dst = append(dst, c.key[:]...)
	}
	return dst
}

// Decode parses a Plan from the front of src, returning the plan and the
// number of bytes consumed.
func Decode(src []byte) (*Plan, int, error) {
	if len(src) < 4 {
		return nil, 0, ErrTruncated
	}
	tag := nodeKind(binary.LittleEndian.Uint32(src))
	off := 4
	switch tag {
	case nodePay:
		if len(src[off:]) < 8+32 {
			return nil, 0, ErrTruncated
		}
		tokens := int64(binary.LittleEndian.Uint64(src[off:]))
		off += 8
		var to Pubkey
		copy(to[:], src[off:off+32])
		off += 32
		return &Plan{kind: nodePay, pay: Payment{Tokens: tokens, To: to}}, off, nil
	case nodeAfter:
		cond, n, err := decodeCondition(src[off:])
		if err != nil {
			return nil, 0, err
		}
		off += n
		next, n, err := Decode(src[off:])
		if err != nil {
			return nil, 0, err
		}
		off += n
		return &Plan{kind: nodeAfter, cond: cond, next: next}, off, nil
	case nodeOr:
		condA, n, err := decodeCondition(src[off:])
		if err != nil {
			return nil, 0, err
		}
		off += n
		planA, n, err := Decode(src[off:])
		if err != nil {
			return nil, 0, err
		}
		off += n
		condB, n, err := decodeCondition(src[off:])
		if err != nil {
			return nil, 0, err
		}
		off += n
		planB, n, err := Decode(src[off:])
		if err != nil {
			return nil, 0, err
		}
		off += n
		return &Plan{kind: nodeOr, condA: condA, planA: planA, condB: condB, planB: planB}, off, nil
	default:
		return nil, 0, fmt.Errorf("%w: plan tag %d", ErrUnknownTag, tag)
	}
}

func decodeCondition(src []byte) (condition, int, error) {
	if len(src) < 4 {
		return condition{}, 0, ErrTruncated
	}
	kind := conditionKind(binary.LittleEndian.Uint32(src))
	off := 4
	switch kind {
	case condTimestamp:
		if len(src[off:]) < 8 {
			return condition{}, 0, ErrTruncated
		}
		slen := binary.LittleEndian.Uint64(src[off:])
		off += 8
		if uint64(len(src[off:])) < slen+32 {
			return condition{}, 0, ErrTruncated
		}
		s := string(src[off : off+int(slen)])
		off += int(slen)
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return condition{}, 0, fmt.Errorf("finplan: invalid timestamp condition: %w", err)
		}
		var key Pubkey
		copy(key[:], src[off:off+32])
		off += 32
		return condition{kind: condTimestamp, key: key, after: t}, off, nil
	case condSignature:
		if len(src[off:]) < 32 {
			return condition{}, 0, ErrTruncated
		}
		var key Pubkey
		copy(key[:], src[off:off+32])
		off += 32
		return condition{kind: condSignature, key: key}, off, nil
	default:
		return condition{}, 0, fmt.Errorf("%w: condition kind %d", ErrUnknownTag, kind)
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
