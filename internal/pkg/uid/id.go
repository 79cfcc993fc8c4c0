// Package uid provides identifier generators behind small interfaces.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
