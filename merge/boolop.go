// Package merge provides N-to-1 merges: a priority merge that picks an input
// with an arbitration policy, and a one-hot merge that follows an external
// selector.
package merge

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/sarchlab/elastic/bitvec"
)

// BoolOp is the associative operator that combines the selected inputs of a
// one-hot merge when more than one is selected.
type BoolOp int

// The operators.
const (
	OpOr BoolOp = iota
	OpAnd
	OpXor
)

func (op BoolOp) String() string {
	switch op {
	case OpOr:
		return "or"
	case OpAnd:
		return "and"
	case OpXor:
		return "xor"
	}

	return fmt.Sprintf("BoolOp(%d)", int(op))
}

// Apply combines two vectors.
func (op BoolOp) Apply(a, b bitvec.Vec) bitvec.Vec {
	switch op {
	case OpAnd:
		return a.And(b)
	case OpXor:
		return a.Xor(b)
	default:
		return a.Or(b)
	}
}

// Fold combines all values. Folding nothing gives zero.
func (op BoolOp) Fold(width int, values []bitvec.Vec) bitvec.Vec {
	if len(values) == 0 {
		return bitvec.New(width)
	}

	acc := values[0]
	for _, v := range values[1:] {
		acc = op.Apply(acc, v)
	}

	return acc
}

// ParseBoolOp converts an operator name back to a BoolOp.
func ParseBoolOp(s string) (BoolOp, error) {
	switch strings.ToLower(s) {
	case "or":
		return OpOr, nil
	case "and":
		return OpAnd, nil
	case "xor":
		return OpXor, nil
	}

	return 0, errors.Errorf("unknown boolean operator %q", s)
}
