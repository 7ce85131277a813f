// Package sanitizer normalizes free-text request fields before validation,
// so equality checks and stored values are stable regardless of how callers
// format their input.
package sanitizer

// Strategy transforms a string; strategies compose into pipelines.
type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}
