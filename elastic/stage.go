// Package elastic provides the storage stages that decouple a producer from a
// consumer: the one-slot elastic buffer, the skid buffer, the half buffer and
// pipelines built from them.
package elastic

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

// A Stage is a storage element between an input and an output channel. A
// stage never loses or duplicates a word and keeps words in order.
type Stage interface {
	sim.Component

	// Input returns the channel the stage consumes.
	Input() *handshake.Channel

	// Output returns the channel the stage produces.
	Output() *handshake.Channel

	// Occupancy returns the number of words held.
	Occupancy() int

	// Capacity returns the maximum number of words held.
	Capacity() int
}

// Kind selects a stage implementation.
type Kind int

// The stage kinds.
const (
	// KindElastic is the one-slot elastic buffer. It runs at full throughput,
	// but its input ready depends on its output ready in the same cycle.
	KindElastic Kind = iota

	// KindSkid is the two-slot skid buffer. It runs at full throughput and
	// both ready and valid come straight from registers.
	KindSkid

	// KindHalf is the one-slot half buffer. Ready and valid come straight
	// from registers, at the cost of accepting a word every other cycle.
	KindHalf
)

var kindNames = map[Kind]string{
	KindElastic: "elastic",
	KindSkid:    "skid",
	KindHalf:    "half",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a kind name, as printed by String, back to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}

	return 0, errors.Errorf("unknown buffer kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}

type stageBase struct {
	*sim.ComponentBase

	in  *handshake.Channel
	out *handshake.Channel
}

func (s *stageBase) Input() *handshake.Channel {
	return s.in
}

func (s *stageBase) Output() *handshake.Channel {
	return s.out
}
