package extract

import "bytes"

var (
	schemeHTTP  = []byte("http://")
	schemeHTTPS = []byte("https://")
)

// tokenByte marks the bytes that may appear in a URL body: `!`, the ASCII
// run `$` through `_` (digits, uppercase letters, and URL punctuation such
// as %/:?@), and lowercase letters. Everything else, including whitespace,
// `"`, `#`, `~`, and any non-ASCII byte, terminates the token. Bytes of a
// malformed multi-byte sequence are all non-ASCII, so broken encodings
// degrade to ordinary non-symbol content.
var tokenByte [256]bool

func init() {
	tokenByte['!'] = true
	for c := '$'; c <= '_'; c++ {
		tokenByte[c] = true
	}
	for c := 'a'; c <= 'z'; c++ {
		tokenByte[c] = true
	}
}

// Scan runs the symbol state machine over the whole message and returns at
// most maxSymbols URL symbols. It is pure: no side effects, identical
// results for identical inputs, and cost linear in len(msg) regardless of
// content. A non-positive maxSymbols yields no symbols and reports a
// non-empty message as truncated, since none of it was examined.
func Scan(msg []byte, maxSymbols int) Result {
	m := newMachine(msg, maxSymbols)
	for !m.run(len(msg) + 1) {
	}
	return m.result()
}

// machine is the resumable scan state. The parser drives it a bounded
// number of bytes at a time so a large message can yield between chunks;
// Scan drives it to completion in one call. Either way the result is the
// same. The cursor can suspend inside a token, so even a message that is
// one enormous URL honors the per-call byte budget.
type machine struct {
	msg        []byte
	maxSymbols int
	pos        int
	symbols    []Symbol
	truncated  bool
	done       bool
	steps      int

	// In-token state, valid while inToken: pos holds the token start,
	// bodyStart the first byte past the scheme, end the scan cursor.
	inToken   bool
	bodyStart int
	end       int
}

func newMachine(msg []byte, maxSymbols int) *machine {
	m := &machine{msg: msg, maxSymbols: maxSymbols}
	if maxSymbols <= 0 {
		// The scan exits immediately; a non-empty message is left
		// unconsumed.
		m.done = true
		m.truncated = len(msg) > 0
	}
	return m
}

// run advances the scan by at most budget bytes and reports whether it has
// finished. Every byte of input is examined once, so the total work over
// all calls is linear in the message length. There is no backtracking: a
// confirmed token is never re-examined and a failed scheme match advances
// the cursor.
func (m *machine) run(budget int) bool {
	for !m.done && budget > 0 {
		if m.inToken {
			budget -= m.extend(budget)
			continue
		}
		if m.pos >= len(m.msg) {
			m.done = true
			break
		}
		m.steps++
		if m.msg[m.pos] != 'h' {
			m.pos++
			budget--
			continue
		}
		bodyStart := m.pos + m.schemeLen()
		if bodyStart == m.pos {
			m.pos++
			budget--
			continue
		}
		m.inToken = true
		m.bodyStart = bodyStart
		m.end = bodyStart
		budget -= bodyStart - m.pos
	}
	if !m.inToken && m.pos >= len(m.msg) {
		m.done = true
	}
	return m.done
}

// extend moves the in-token cursor forward by at most budget bytes and
// returns the bytes consumed. The token resolves when a terminating byte
// or the end of the message falls inside the budget; otherwise the cursor
// suspends mid-token and the next run call picks it up.
func (m *machine) extend(budget int) int {
	limit := m.end + budget
	if limit > len(m.msg) {
		limit = len(m.msg)
	}
	start := m.end
	for m.end < limit && tokenByte[m.msg[m.end]] {
		m.end++
	}
	if m.end < limit || m.end == len(m.msg) {
		m.resolveToken()
	}
	return m.end - start
}

// resolveToken emits the completed token, or discards it when the scheme
// prefix has an empty body.
func (m *machine) resolveToken() {
	m.inToken = false
	if m.end == m.bodyStart {
		// A scheme prefix with an empty body is not a symbol.
		m.pos++
		return
	}
	m.symbols = append(m.symbols, Symbol{
		Kind:  KindURL,
		Start: m.pos,
		End:   m.end,
		Text:  string(m.msg[m.pos:m.end]),
	})
	m.pos = m.end
	if len(m.symbols) == m.maxSymbols {
		m.done = true
		m.truncated = m.pos < len(m.msg)
	}
}

// schemeLen returns the length of the scheme prefix at the cursor, or zero
// when the cursor is not at one. The scheme match is case-sensitive.
func (m *machine) schemeLen() int {
	rest := m.msg[m.pos:]
	if bytes.HasPrefix(rest, schemeHTTPS) {
		return len(schemeHTTPS)
	}
	if bytes.HasPrefix(rest, schemeHTTP) {
		return len(schemeHTTP)
	}
	return 0
}

func (m *machine) result() Result {
	return Result{Symbols: m.symbols, Truncated: m.truncated}
}
