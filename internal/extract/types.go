// Package extract implements the URL symbol scanner and the bounded parser
// that runs it under the configured limits.
package extract

// Kind identifies the grammar that produced a Symbol.
type Kind int

// KindURL is the only symbol grammar currently recognized. The type exists
// so additional grammars can be added without changing the Symbol shape.
const KindURL Kind = iota

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if k == KindURL {
		return "url"
	}
	return "unknown"
}

// Symbol is one extracted token together with its [Start, End) byte span in
// the scanned message. Symbols are read-only once produced.
type Symbol struct {
	Kind  Kind
	Start int
	End   int
	Text  string
}

// Result is the ordered outcome of one scan. Symbols appear in discovery
// order with non-overlapping spans. Truncated is set when the symbol cap
// stopped the scan before the message was fully consumed.
type Result struct {
	Symbols   []Symbol
	Truncated bool
}
