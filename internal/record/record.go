// Package record implements the pipe-delimited line format shared by the
// ledger file and the entity data files.
//
// A record is one line of fields separated by '|'. Field text is escaped so
// that a '|', a backslash, or a line break inside a field survives a round
// trip:
//
//	\   -> \\
//	|   -> \|
//	LF  -> \n
//	CR  -> \r
//
// Files written before escaping was introduced decode unchanged as long as
// they contain no backslashes.
package record

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Delimiter separates fields within a record.
const Delimiter = '|'

// Escape returns s with the delimiter, backslashes and line breaks escaped.
func Escape(s string) string {
	if !strings.ContainsAny(s, "\\|\n\r") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case Delimiter:
			b.WriteString(`\|`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Join escapes each field and joins them with the delimiter.
func Join(fields ...string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = Escape(f)
	}
	return strings.Join(escaped, string(Delimiter))
}

// Split splits line on unescaped delimiters and unescapes each field.
// An unknown escape sequence keeps the escaped character as-is.
func Split(line string) []string {
	var (
		fields []string
		cur    strings.Builder
		esc    bool
	)
	for _, r := range line {
		if esc {
			switch r {
			case 'n':
				cur.WriteRune('\n')
			case 'r':
				cur.WriteRune('\r')
			default:
				cur.WriteRune(r)
			}
			esc = false
			continue
		}
		switch r {
		case '\\':
			esc = true
		case Delimiter:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if esc {
		cur.WriteRune('\\')
	}
	return append(fields, cur.String())
}

// ReadLines calls fn for every non-blank line of r with its 1-based line
// number. The first error returned by fn stops the scan and is wrapped with
// the line number.
func ReadLines(r io.Reader, fn func(line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return scanner.Err()
}
