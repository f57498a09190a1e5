package parse

import (
	"errors"
	"fmt"
	"strings"
)

var errUnexpectedEnd = errors.New("unexpected end of data")

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// skipSpace skips whitespace and comments starting at i
func skipSpace(s string, i int) int {
	for i < len(s) {
		c := s[i]
		if isWhitespace(c) {
			i++
			continue
		}
		if c == '%' {
			for i < len(s) && s[i] != '\n' && s[i] != '\r' {
				i++
			}
			continue
		}
		break
	}
	return i
}

// scanToken returns the end of a regular (non-delimited) token
func scanToken(s string, i int) int {
	for i < len(s) && !isWhitespace(s[i]) && !isDelimiter(s[i]) {
		i++
	}
	return i
}

// scanValue returns the index just past the PDF object value starting at i.
// Indirect references ("12 0 R") are scanned as a single value.
func scanValue(s string, i int) (int, error) {
	if i >= len(s) {
		return i, errUnexpectedEnd
	}

	c := s[i]
	switch {
	case c == '<' && i+1 < len(s) && s[i+1] == '<':
		j := i + 2
		for {
			j = skipSpace(s, j)
			if j >= len(s) {
				return j, errUnexpectedEnd
			}
			if strings.HasPrefix(s[j:], ">>") {
				return j + 2, nil
			}
			k, err := scanValue(s, j)
			if err != nil {
				return k, err
			}
			j = k
		}

	case c == '[':
		j := i + 1
		for {
			j = skipSpace(s, j)
			if j >= len(s) {
				return j, errUnexpectedEnd
			}
			if s[j] == ']' {
				return j + 1, nil
			}
			k, err := scanValue(s, j)
			if err != nil {
				return k, err
			}
			j = k
		}

	case c == '(':
		depth := 0
		for j := i; j < len(s); j++ {
			switch s[j] {
			case '\\':
				j++
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return j + 1, nil
				}
			}
		}
		return len(s), errUnexpectedEnd

	case c == '<':
		j := strings.IndexByte(s[i:], '>')
		if j == -1 {
			return len(s), errUnexpectedEnd
		}
		return i + j + 1, nil

	case c == '/':
		return scanToken(s, i+1), nil

	case isDelimiter(c):
		return i, fmt.Errorf("unexpected %q at offset %d", c, i)
	}

	j := scanToken(s, i)
	if j == i {
		return i, fmt.Errorf("empty token at offset %d", i)
	}

	if isUnsigned(s[i:j]) {
		k := skipSpace(s, j)
		l := k
		for l < len(s) && isDigit(s[l]) {
			l++
		}
		if l > k {
			m := skipSpace(s, l)
			if m < len(s) && s[m] == 'R' && (m+1 == len(s) || isWhitespace(s[m+1]) || isDelimiter(s[m+1])) {
				return m + 1, nil
			}
		}
	}

	return j, nil
}

func isUnsigned(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
