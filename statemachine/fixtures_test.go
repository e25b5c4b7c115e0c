package statemachine

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var errEmptyText = errors.New("text is empty")

type textData struct {
	Text  string
	Count int
}

type textUpdate struct {
	Text  *string
	Count *int
}

func (d *textData) UpdateState(updates textUpdate) error {
	if updates.Text != nil {
		d.Text = *updates.Text
	}

	if updates.Count != nil {
		d.Count = *updates.Count
	}

	return nil
}

func (d textData) String() string {
	return fmt.Sprintf("\tText: %s\n\tCount: %d", d.Text, d.Count)
}

type sampleContext struct {
	RetryBudget

	Label string
}

type sampleContextUpdate struct {
	Label   *string
	Retries *uint32
}

func (c *sampleContext) UpdateContext(updates sampleContextUpdate) error {
	if updates.Label != nil {
		c.Label = *updates.Label
	}

	if updates.Retries != nil {
		c.Retries = *updates.Retries
	}

	return nil
}

func (c sampleContext) String() string {
	return fmt.Sprintf("\tLabel: %s\n\tMax Retries: %d", c.Label, c.Retries)
}

// upperState upper-cases its input text.
type upperState struct {
	Base[textData, textData, sampleContext]
}

func newUpperState(text string) *upperState {
	return &upperState{
		Base: NewBase[textData, textData, sampleContext]("Upper State", textData{Text: text}, sampleContext{}),
	}
}

func (s *upperState) ComputeOutput() error {
	in := s.Input()
	if in.Text == "" {
		return &StateError{State: s.Name(), Err: errEmptyText}
	}

	s.SetOutput(textData{Text: strings.ToUpper(in.Text), Count: in.Count + 1})

	return nil
}

// waitingState blocks until release is closed or ctx ends.
type waitingState struct {
	Base[textData, textData, sampleContext]

	release chan struct{}
}

func newWaitingState(text string) *waitingState {
	return &waitingState{
		Base:    NewBase[textData, textData, sampleContext]("Waiting State", textData{Text: text}, sampleContext{}),
		release: make(chan struct{}),
	}
}

func (s *waitingState) ComputeOutput() error {
	return s.ComputeOutputAsync(context.Background())
}

func (s *waitingState) ComputeOutputAsync(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return &StateError{State: s.Name(), Err: ctx.Err()}
	case <-s.release:
	}

	in := s.Input()
	s.SetOutput(textData{Text: in.Text + "!", Count: in.Count})

	return nil
}

// firstState and secondState are the stages used by transition tests.
type firstState struct {
	Base[textData, textData, sampleContext]
}

func newFirstState(text string) *firstState {
	return &firstState{
		Base: NewBase[textData, textData, sampleContext]("First State", textData{Text: text}, sampleContext{}),
	}
}

func (s *firstState) ComputeOutput() error {
	in := s.Input()
	s.SetOutput(textData{Text: in.Text, Count: in.Count + 1})

	return nil
}

type secondState struct {
	Base[textData, textData, sampleContext]
}

func (s *secondState) ComputeOutput() error {
	in := s.Input()
	s.SetOutput(textData{Text: strings.Repeat(in.Text, 2), Count: in.Count})

	return nil
}

var firstToSecond = TransitionFunc[*firstState, *secondState](
	func(_ context.Context, from *firstState) (*secondState, error) {
		out, err := RequireOutput[textData]("Sample SuperState", from)
		if err != nil {
			return nil, err
		}

		return &secondState{
			Base: NewBase[textData, textData, sampleContext]("Second State", out, from.ContextData()),
		}, nil
	})

var firstToFirst = TransitionFunc[*firstState, *firstState](
	func(_ context.Context, from *firstState) (*firstState, error) {
		out, err := RequireOutput[textData]("Sample SuperState", from)
		if err != nil {
			return nil, err
		}

		return &firstState{
			Base: NewBase[textData, textData, sampleContext]("First State", out, from.ContextData()),
		}, nil
	})

type superSummary struct {
	Stage string
	Text  string
}

func (s superSummary) String() string {
	return fmt.Sprintf("\tStage: %s\n\tText: %s", s.Stage, s.Text)
}

func foldText(inner State) (superSummary, error) {
	stage, ok := inner.(Stage[textData, textData, sampleContext])
	if !ok {
		return superSummary{}, fmt.Errorf("unexpected inner state %T", inner)
	}

	out, _ := stage.Output()

	return superSummary{Stage: inner.Name(), Text: out.Text}, nil
}

type sampleSuper[S State] = Composite[S, textData, superSummary, sampleContext]

func newSampleSuper(text string) *sampleSuper[*firstState] {
	inner := New(newFirstState(text), WithName("sample-inner"))

	return NewComposite("Sample SuperState", inner, textData{Text: text}, sampleContext{}, Fold[superSummary](foldText))
}

func ptr[T any](v T) *T {
	return &v
}
