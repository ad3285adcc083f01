package xnet

import (
	"strconv"
	"strings"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
)

// needsQuoting reports whether s must be written as a quoted string
// rather than a bare token (§4.7.1: it is empty, or has whitespace, '#',
// a quote or a backslash).
func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '#' || r == '"' || r == '\\' {
			return true
		}
	}
	return false
}

// escapeString renders s as a quoted XNET string literal.
func escapeString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			if c < 0x20 || c == 0x7f {
				b.WriteString(`\x`)
				if c < 0x10 {
					b.WriteByte('0')
				}
				b.WriteString(strings.ToUpper(strconv.FormatUint(uint64(c), 16)))
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// writeToken renders s as a bare token when possible, quoted otherwise.
func writeToken(s string) string {
	if needsQuoting(s) {
		return escapeString(s)
	}
	return s
}

// unescapeString decodes a quoted or bare XNET string token, per the
// escape set of §4.7.1.
func unescapeString(tok string) (string, error) {
	if len(tok) == 0 {
		return "", nil
	}
	if tok[0] != '"' {
		return tok, nil
	}
	if len(tok) < 2 || tok[len(tok)-1] != '"' {
		return "", ferrors.CorruptFormat("UnescapeString", "unterminated quoted string")
	}
	body := tok[1 : len(tok)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", ferrors.CorruptFormat("UnescapeString", "trailing backslash")
		}
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'x':
			if i+2 >= len(body) {
				return "", ferrors.CorruptFormat("UnescapeString", "truncated \\x escape")
			}
			v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", ferrors.CorruptFormat("UnescapeString", "invalid \\x escape")
			}
			b.WriteByte(byte(v))
			i += 2
		default:
			return "", ferrors.CorruptFormat("UnescapeString", "unknown escape sequence")
		}
	}
	return b.String(), nil
}

// splitTokens splits a directive line into whitespace-separated tokens,
// keeping quoted substrings intact.
func splitTokens(line string) []string {
	var toks []string
	i := 0
	for i < len(line) {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i >= len(line) {
			break
		}
		start := i
		if line[i] == '"' {
			i++
			for i < len(line) && line[i] != '"' {
				if line[i] == '\\' && i+1 < len(line) {
					i++
				}
				i++
			}
			if i < len(line) {
				i++ // closing quote
			}
		} else {
			for i < len(line) && !isSpace(line[i]) {
				i++
			}
		}
		toks = append(toks, line[start:i])
	}
	return toks
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' }
