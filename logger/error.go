package logger

import (
	"context"
	"log/slog"
	"time"
)

// AnnotateError attaches slog key-value pairs to err. When the result is logged
// through a logger configured by this package, the pairs are added to the record.
// Annotations survive wrapping with %w and errors.Join.
//
//	summary, err := extract.Run(ctx, machine, advance)
//	if err != nil {
//	    return AnnotateError(err, "cik", raw, "stage", stage)
//	}
//
// Returns nil if err is nil.
func AnnotateError(err error, args ...any) error {
	if err == nil {
		return nil
	}

	r := slog.NewRecord(time.Now(), slog.LevelDebug, "", 0)
	r.Add(args...)

	attrs := make([]slog.Attr, 0, r.NumAttrs())

	r.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, attr)

		return true
	})

	return &annotatedError{err: err, attrs: attrs}
}

type annotatedError struct {
	err   error
	attrs []slog.Attr
}

func (a *annotatedError) Error() string {
	return a.err.Error()
}

func (a *annotatedError) Unwrap() error {
	return a.err
}

var _ error = (*annotatedError)(nil)

// ErrorAttrs returns every annotation in err's tree, outermost first.
func ErrorAttrs(err error) []slog.Attr {
	var attrs []slog.Attr

	walkErrors(err, func(e error) {
		if a, ok := e.(*annotatedError); ok { //nolint:errorlint
			attrs = append(attrs, a.attrs...)
		}
	})

	return attrs
}

func walkErrors(err error, visit func(error)) {
	if err == nil {
		return
	}

	visit(err)

	switch u := err.(type) { //nolint:errorlint
	case interface{ Unwrap() error }:
		walkErrors(u.Unwrap(), visit)
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			walkErrors(e, visit)
		}
	}
}

// errorAttrHandler adds the annotations of any error-valued attribute to the
// record before passing it on.
type errorAttrHandler struct {
	inner slog.Handler
}

var _ slog.Handler = (*errorAttrHandler)(nil)

func (h *errorAttrHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *errorAttrHandler) Handle(ctx context.Context, record slog.Record) error {
	var extra []slog.Attr

	record.Attrs(func(attr slog.Attr) bool {
		if err, ok := attr.Value.Any().(error); ok {
			extra = append(extra, ErrorAttrs(err)...)
		}

		return true
	})

	if len(extra) == 0 {
		return h.inner.Handle(ctx, record)
	}

	r := record.Clone()
	r.AddAttrs(extra...)

	return h.inner.Handle(ctx, r)
}

func (h *errorAttrHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &errorAttrHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *errorAttrHandler) WithGroup(name string) slog.Handler {
	return &errorAttrHandler{inner: h.inner.WithGroup(name)}
}
