// Package history owns the ordered sequence of visited steps in a decision
// tree walk and the only two ways to change it: selecting an option on some
// step, and resetting to the root.
package history

import (
	"errors"
	"fmt"

	"github.com/smileynet/branchwalk/internal/tree"
)

// Unanswered is the Selected value of a step awaiting an answer.
const Unanswered = -1

// ErrInvalidIndex is returned when Select is called with a step or option
// index outside the current history. It indicates a caller bug.
var ErrInvalidIndex = errors.New("invalid index")

// State is the overall state of the walk.
type State int

const (
	Active State = iota // Last step is unanswered.
	Ended               // Last step is answered with a leaf option.
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Ended:
		return "ended"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Step is one visited node plus the index of its selected option.
type Step struct {
	Node     *tree.Node
	Selected int
}

// Answered reports whether an option has been selected on this step.
func (s Step) Answered() bool {
	return s.Selected != Unanswered
}

// Option returns the selected option, or false if the step is unanswered.
func (s Step) Option() (tree.Option, bool) {
	if !s.Answered() {
		return tree.Option{}, false
	}
	return s.Node.Options[s.Selected], true
}

// Change describes the effect of a mutation. Connectors at index Invalidate
// and above no longer connect live steps.
type Change struct {
	Invalidate int
	Appended   bool
	Len        int
	State      State
	Prev       State
}

// Transitioned reports whether the mutation moved the walk between states.
func (c Change) Transitioned() bool {
	return c.State != c.Prev
}

// Store holds the walk history. It is not safe for concurrent use; the
// Bubble Tea update loop is its only writer.
type Store struct {
	root  *tree.Node
	steps []Step
	state State
}

// New returns a Store positioned on an unanswered root step.
func New(root *tree.Node) *Store {
	s := &Store{root: root}
	s.Reset()
	return s
}

// Len returns the number of steps, always at least one.
func (s *Store) Len() int {
	return len(s.steps)
}

// State returns the current walk state.
func (s *Store) State() State {
	return s.state
}

// Step returns the step at index i. It panics if i is out of range.
func (s *Store) Step(i int) Step {
	return s.steps[i]
}

// Last returns the frontier step.
func (s *Store) Last() Step {
	return s.steps[len(s.steps)-1]
}

// Steps returns a copy of the history.
func (s *Store) Steps() []Step {
	return append([]Step(nil), s.steps...)
}

// Select answers step stepIndex with option optionIndex. Everything after
// stepIndex is discarded; if the option continues, its node is appended as a
// new unanswered step, otherwise the walk ends. Selecting on an earlier step
// of an ended walk re-derives the state from the new history.
func (s *Store) Select(stepIndex, optionIndex int) (Change, error) {
	if stepIndex < 0 || stepIndex >= len(s.steps) {
		return Change{}, fmt.Errorf("history: step index %d out of range [0,%d): %w",
			stepIndex, len(s.steps), ErrInvalidIndex)
	}
	node := s.steps[stepIndex].Node
	if optionIndex < 0 || optionIndex >= len(node.Options) {
		return Change{}, fmt.Errorf("history: option index %d out of range [0,%d) at step %d: %w",
			optionIndex, len(node.Options), stepIndex, ErrInvalidIndex)
	}

	prev := s.state
	s.steps = s.steps[:stepIndex+1]
	s.steps[stepIndex].Selected = optionIndex

	change := Change{Invalidate: stepIndex, Prev: prev}
	if next := node.Options[optionIndex].Next; next != nil {
		s.steps = append(s.steps, Step{Node: next, Selected: Unanswered})
		s.state = Active
		change.Appended = true
	} else {
		s.state = Ended
	}
	change.Len = len(s.steps)
	change.State = s.state
	return change, nil
}

// Reset discards the history and starts over at the root.
func (s *Store) Reset() Change {
	prev := s.state
	s.steps = []Step{{Node: s.root, Selected: Unanswered}}
	s.state = Active
	return Change{Invalidate: 0, Len: 1, State: Active, Prev: prev}
}

// Names returns the names of the selected options in selection order.
// Unanswered steps and empty names are skipped.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.steps))
	for _, step := range s.steps {
		opt, ok := step.Option()
		if !ok || opt.Name == "" {
			continue
		}
		names = append(names, opt.Name)
	}
	return names
}
