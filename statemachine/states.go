package statemachine

import (
	"fmt"
	"strings"
)

const summarySeparator = "---------------------------"

// Base carries the typed data of a State. Concrete states embed it and add their
// computation.
//
// The output stays absent until SetOutput is called. Input and context only change
// through EditInput and EditContext.
type Base[I, O, C any] struct {
	name    string
	input   I
	context C
	output  *O
}

// NewBase returns a Base with no output.
func NewBase[I, O, C any](name string, input I, context C) Base[I, O, C] {
	return Base[I, O, C]{
		name:    name,
		input:   input,
		context: context,
	}
}

// Name returns the state's display name.
func (b *Base[I, O, C]) Name() string {
	return b.name
}

// Input returns a copy of the input data.
func (b *Base[I, O, C]) Input() I {
	return b.input
}

// ContextData returns a copy of the context data.
func (b *Base[I, O, C]) ContextData() C {
	return b.context
}

// Output returns the computed output, if any.
func (b *Base[I, O, C]) Output() (O, bool) {
	if b.output == nil {
		var zero O

		return zero, false
	}

	return *b.output, true
}

// HasOutput reports whether an output has been committed.
func (b *Base[I, O, C]) HasOutput() bool {
	return b.output != nil
}

// SetOutput commits a freshly computed output, replacing any previous one.
func (b *Base[I, O, C]) SetOutput(output O) {
	b.output = &output
}

// EditInput applies fn to the input. The input is left untouched when fn fails.
func (b *Base[I, O, C]) EditInput(fn func(input *I) error) error {
	next := b.input

	if err := fn(&next); err != nil {
		return err
	}

	b.input = next

	return nil
}

// EditContext applies fn to the context. The context is left untouched when fn fails.
func (b *Base[I, O, C]) EditContext(fn func(context *C) error) error {
	next := b.context

	if err := fn(&next); err != nil {
		return err
	}

	b.context = next

	return nil
}

// Summary renders the state for diagnostics under the given name.
func (b *Base[I, O, C]) Summary(name string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "`%s` State Summary\n", name)
	sb.WriteString(summarySeparator + "\n")
	sb.WriteString("Context:\n")
	fmt.Fprintf(&sb, "%v\n", b.context)
	sb.WriteString("Input Data:\n")
	fmt.Fprintf(&sb, "%v\n", b.input)
	sb.WriteString("Output Data:\n")

	if b.output == nil {
		sb.WriteString("\tNone")
	} else {
		fmt.Fprintf(&sb, "%v", *b.output)
	}

	return sb.String()
}

// String implements fmt.Stringer.
func (b *Base[I, O, C]) String() string {
	return b.Summary(b.name)
}
