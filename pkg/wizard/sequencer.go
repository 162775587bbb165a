package wizard

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-memora/pkg/validation"
)

// Sequencer tracks the current step of a flow with N fixed steps. Forward
// moves are gated by the caller-supplied validation result; backward moves
// are always allowed.
type Sequencer struct {
	current int
	total   int
}

// NewSequencer returns a sequencer positioned on step 1.
func NewSequencer(total int) (*Sequencer, error) {
	if total < 1 {
		return nil, fmt.Errorf("%w: need at least one step, got %d", ErrInvalidSteps, total)
	}
	return &Sequencer{current: 1, total: total}, nil
}

// Current returns the current step number.
func (s *Sequencer) Current() int { return s.current }

// Total returns N.
func (s *Sequencer) Total() int { return s.total }

// Last reports whether the sequencer is on step N.
func (s *Sequencer) Last() bool { return s.current == s.total }

// Advance moves forward one step when gate is valid. It reports whether the
// step changed; on the last step it never does.
func (s *Sequencer) Advance(gate validation.Result) bool {
	if !gate.Valid || s.current >= s.total {
		return false
	}
	s.current++
	return true
}

// Retreat moves back one step, floored at 1.
func (s *Sequencer) Retreat() bool {
	if s.current <= 1 {
		return false
	}
	s.current--
	return true
}

// JumpTo moves to an already visited step.
func (s *Sequencer) JumpTo(step int) error {
	if step < 1 || step > s.total {
		return fmt.Errorf("%w: %d", ErrStepOutOfRange, step)
	}
	if step > s.current {
		return fmt.Errorf("%w: %d (current %d)", ErrStepNotVisited, step, s.current)
	}
	s.current = step
	return nil
}

// Reset returns to step 1.
func (s *Sequencer) Reset() { s.current = 1 }

func itoa(n int) string { return strconv.Itoa(n) }
