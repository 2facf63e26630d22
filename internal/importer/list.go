package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNotList = errors.New("not a list literal")

// ParseList decodes a list-of-strings column. The dataset mixes JSON arrays
// with Python list literals that use single quotes, so JSON is tried first
// and a small literal scanner handles the rest. An empty cell is an empty list.
func ParseList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}

	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		if out == nil {
			out = []string{}
		}
		return out, nil
	}
	return parseLiteral(raw)
}

func parseLiteral(raw string) ([]string, error) {
	if !strings.HasPrefix(raw, "[") || !strings.HasSuffix(raw, "]") {
		return nil, errNotList
	}
	s := []rune(raw[1 : len(raw)-1])
	out := []string{}

	pos := 0
	skipSpace := func() {
		for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t' || s[pos] == '\n' || s[pos] == '\r') {
			pos++
		}
	}

	for {
		skipSpace()
		if pos == len(s) {
			return out, nil
		}

		quote := s[pos]
		if quote != '\'' && quote != '"' {
			return nil, fmt.Errorf("%w: unexpected %q at %d", errNotList, quote, pos)
		}
		pos++

		var b strings.Builder
		closed := false
		for pos < len(s) {
			r := s[pos]
			pos++
			if r == '\\' && pos < len(s) {
				b.WriteRune(unescape(s[pos]))
				pos++
				continue
			}
			if r == quote {
				closed = true
				break
			}
			b.WriteRune(r)
		}
		if !closed {
			return nil, fmt.Errorf("%w: unterminated string", errNotList)
		}
		out = append(out, b.String())

		skipSpace()
		if pos == len(s) {
			return out, nil
		}
		if s[pos] != ',' {
			return nil, fmt.Errorf("%w: expected ',' at %d", errNotList, pos)
		}
		pos++
	}
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return r
	}
}
