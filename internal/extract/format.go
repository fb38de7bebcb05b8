package extract

import "strings"

// Format renders a Result as the single-line text emitted on the wire and
// by the one-shot CLI: "no urls found" when empty, otherwise the symbol
// texts in discovery order with a trailing marker when the symbol cap
// truncated the scan.
func Format(res Result) string {
	if len(res.Symbols) == 0 {
		return "no urls found"
	}
	var b strings.Builder
	b.WriteString("urls: ")
	for i, sym := range res.Symbols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sym.Text)
	}
	if res.Truncated {
		b.WriteString(" (truncated)")
	}
	return b.String()
}
