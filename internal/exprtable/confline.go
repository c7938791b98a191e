package exprtable

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zjrosen/mibstore/internal/log"
)

// Token starts every persisted row line.
const Token = "expExpressionTable"

// ErrBadLine is returned for config lines that cannot be parsed.
var ErrBadLine = errors.New("invalid expExpressionTable line")

// FormatLine renders row as a config line:
//
//	expExpressionTable owner name expression valueType comment delta prefix errors status 0
//
// Octet strings made of letters, digits and spaces are quoted; anything
// else is written as 0x-prefixed hex.
func FormatLine(row *Row) string {
	fields := []string{
		Token,
		formatOctets(row.Owner),
		formatOctets(row.Name),
		formatOctets(row.Expression),
		strconv.Itoa(int(row.ValueType)),
		formatOctets(row.Comment),
		strconv.FormatInt(int64(row.DeltaInterval), 10),
		formatPrefix(row.Prefix),
		strconv.FormatUint(uint64(row.Errors), 10),
		strconv.Itoa(int(row.Status)),
		"0",
	}
	return strings.Join(fields, " ")
}

// ParseLine parses a line written by FormatLine. Trailing fields may be
// omitted and keep their NewRow defaults. Parsed rows are nonVolatile.
func ParseLine(line string) (*Row, error) {
	toks, err := tokenize(line)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 || toks[0] != Token {
		return nil, fmt.Errorf("%w: missing %s token", ErrBadLine, Token)
	}
	toks = toks[1:]
	if len(toks) < 2 {
		return nil, fmt.Errorf("%w: owner and name required", ErrBadLine)
	}

	owner, err := parseOctets(toks[0])
	if err != nil {
		return nil, fmt.Errorf("%w: owner: %v", ErrBadLine, err)
	}
	name, err := parseOctets(toks[1])
	if err != nil {
		return nil, fmt.Errorf("%w: name: %v", ErrBadLine, err)
	}
	row := NewRow(owner, name)

	p := fieldParser{toks: toks[2:]}
	p.octets(&row.Expression, "expression")
	p.integer("value type", func(n int32) bool {
		row.ValueType = ValueType(n)
		return row.ValueType.Valid()
	})
	p.octets(&row.Comment, "comment")
	p.integer("delta interval", func(n int32) bool {
		row.DeltaInterval = n
		return n >= 0 && n <= MaxDeltaInterval
	})
	p.oid(&row.Prefix)
	p.unsigned("errors", &row.Errors)
	p.integer("status", func(n int32) bool {
		row.Status = RowStatus(n)
		return row.Status.stored()
	})
	if p.err != nil {
		return nil, p.err
	}
	row.Storage = StorageNonVolatile
	return row, nil
}

// Store writes one line per nonVolatile row in index order.
func (t *Table) Store(w io.Writer) (int, error) {
	n := 0
	for _, row := range t.Rows() {
		if row.Storage != StorageNonVolatile {
			continue
		}
		if _, err := fmt.Fprintln(w, FormatLine(row)); err != nil {
			return n, fmt.Errorf("storing expression %q/%q: %w", row.Owner, row.Name, err)
		}
		n++
	}
	log.Debug(log.CatTable, "Rows stored", "count", n)
	return n, nil
}

// Load adds every row line read from r. Blank lines and lines starting
// with # are skipped; other tokens are ignored.
func (t *Table) Load(r io.Reader) (int, error) {
	rows, err := ReadLines(r)
	if err != nil {
		return 0, err
	}
	for i, row := range rows {
		if _, err := t.Add(row); err != nil {
			return i, err
		}
	}
	log.Info(log.CatTable, "Rows loaded", "count", len(rows))
	return len(rows), nil
}

// ReadLines parses every row line in r.
func ReadLines(r io.Reader) ([]*Row, error) {
	var rows []*Row
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if first, _, _ := strings.Cut(line, " "); first != Token {
			continue
		}
		row, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading expression lines: %w", err)
	}
	return rows, nil
}

type fieldParser struct {
	toks []string
	err  error
}

func (p *fieldParser) next() (string, bool) {
	if p.err != nil || len(p.toks) == 0 {
		return "", false
	}
	tok := p.toks[0]
	p.toks = p.toks[1:]
	return tok, true
}

func (p *fieldParser) octets(dst *string, field string) {
	tok, ok := p.next()
	if !ok {
		return
	}
	s, err := parseOctets(tok)
	if err != nil {
		p.err = fmt.Errorf("%w: %s: %v", ErrBadLine, field, err)
		return
	}
	*dst = s
}

// integer parses a 32-bit signed field. set stores the value and reports
// whether it is in range.
func (p *fieldParser) integer(field string, set func(int32) bool) {
	tok, ok := p.next()
	if !ok {
		return
	}
	n, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		p.err = fmt.Errorf("%w: %s: %v", ErrBadLine, field, err)
		return
	}
	if !set(int32(n)) {
		p.err = fmt.Errorf("%w: %s: %d out of range", ErrBadLine, field, n)
	}
}

func (p *fieldParser) unsigned(field string, dst *uint32) {
	tok, ok := p.next()
	if !ok {
		return
	}
	n, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		p.err = fmt.Errorf("%w: %s: %v", ErrBadLine, field, err)
		return
	}
	*dst = uint32(n)
}

func (p *fieldParser) oid(dst *[]uint32) {
	tok, ok := p.next()
	if !ok {
		return
	}
	oid, err := ParseOID(tok)
	if err != nil {
		p.err = fmt.Errorf("%w: prefix: %v", ErrBadLine, err)
		return
	}
	*dst = oid
}

// ParseOID parses a dotted OID with or without a leading dot.
func ParseOID(s string) ([]uint32, error) {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return []uint32{}, nil
	}
	parts := strings.Split(s, ".")
	oid := make([]uint32, len(parts))
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("sub-identifier %q: %w", part, err)
		}
		oid[i] = uint32(n)
	}
	return oid, nil
}

func formatPrefix(oid []uint32) string {
	if len(oid) == 0 {
		return "."
	}
	return FormatOID(oid)
}

func formatOctets(s string) string {
	if s == "" {
		return `""`
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isAlnum(c) && c != ' ' {
			return "0x" + hex.EncodeToString([]byte(s))
		}
	}
	return `"` + s + `"`
}

func parseOctets(tok string) (string, error) {
	switch {
	case len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"':
		return tok[1 : len(tok)-1], nil
	case strings.HasPrefix(tok, "0x"):
		b, err := hex.DecodeString(tok[2:])
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return tok, nil
	}
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// tokenize splits on whitespace, keeping double-quoted runs together.
func tokenize(line string) ([]string, error) {
	var toks []string
	i := 0
	for i < len(line) {
		switch {
		case line[i] == ' ' || line[i] == '\t':
			i++
		case line[i] == '"':
			end := strings.IndexByte(line[i+1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated quote", ErrBadLine)
			}
			toks = append(toks, line[i:i+end+2])
			i += end + 2
		default:
			j := i
			for j < len(line) && line[j] != ' ' && line[j] != '\t' {
				j++
			}
			toks = append(toks, line[i:j])
			i = j
		}
	}
	return toks, nil
}
