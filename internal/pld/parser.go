package pld

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/Rafaelmdcarneiro/galette/internal/gal"
)

// Parse reads a GALasm-style source file:
//
//	line 1: device name
//	line 2: signature
//	next two non-blank lines: pin names (half the package each)
//	equations until an optional DESCRIPTION keyword
//
// A ';' starts a comment. An equation line ending in '=', '+' or '*'
// continues on the next line.
func Parse(src []byte) (Content, error) {
	var c Content

	lines := splitLines(string(src))

	i := 0
	next := func() (line, bool) {
		for i < len(lines) {
			l := lines[i]
			i++
			if l.text != "" {
				return l, true
			}
		}
		return line{}, false
	}

	dev, ok := next()
	if !ok {
		return c, errors.New("empty file: missing device line")
	}
	c.Device = dev.text

	// The signature is the line immediately after the device line,
	// blank or not.
	if i < len(lines) {
		c.Signature = lines[i].text
		i++
	}

	for row := 0; row < 2; row++ {
		l, ok := next()
		if !ok {
			return c, errors.New("unexpected end of file in pin list")
		}
		defs, err := parsePinRow(l)
		if err != nil {
			return c, err
		}
		c.Pins = append(c.Pins, defs...)
	}

	for {
		l, ok := next()
		if !ok {
			break
		}
		if strings.EqualFold(l.text, "DESCRIPTION") {
			break
		}
		// Gather continuation lines.
		stmt := l.text
		for endsWithOperator(stmt) {
			cont, ok := next()
			if !ok {
				return c, errors.Errorf("line %d: equation continues past end of file", l.num)
			}
			stmt += " " + cont.text
		}
		eq, err := parseEquation(stmt, l.num)
		if err != nil {
			return c, err
		}
		c.Equations = append(c.Equations, eq)
	}

	return c, nil
}

type line struct {
	text string
	num  int
}

// splitLines breaks the source into comment-stripped, trimmed lines.
func splitLines(s string) []line {
	raw := strings.Split(s, "\n")
	out := make([]line, len(raw))
	for i, r := range raw {
		if idx := strings.IndexByte(r, ';'); idx >= 0 {
			r = r[:idx]
		}
		out[i] = line{text: strings.TrimSpace(r), num: i + 1}
	}
	return out
}

func endsWithOperator(s string) bool {
	switch s[len(s)-1] {
	case '=', '+', '*':
		return true
	}
	return false
}

func parsePinRow(l line) ([]PinDef, error) {
	fields := strings.Fields(l.text)
	defs := make([]PinDef, 0, len(fields))
	for _, f := range fields {
		neg := false
		if strings.HasPrefix(f, "/") {
			neg = true
			f = f[1:]
		}
		if !isIdent(f) {
			return nil, errors.Errorf("line %d: invalid pin name %q", l.num, f)
		}
		if strings.EqualFold(f, "NC") {
			if neg {
				return nil, errors.Errorf("line %d: NC cannot be active-low", l.num)
			}
			defs = append(defs, PinDef{Name: "NC", NC: true})
			continue
		}
		defs = append(defs, PinDef{Name: f, ActiveLow: neg})
	}
	return defs, nil
}

func parseEquation(stmt string, num int) (Equation, error) {
	eq := Equation{Line: num}

	parts := strings.SplitN(stmt, "=", 2)
	if len(parts) != 2 {
		return eq, errors.Errorf("line %d: expected an equation", num)
	}
	lhs := strings.TrimSpace(parts[0])
	rhs := strings.TrimSpace(parts[1])

	if strings.HasPrefix(lhs, "/") {
		eq.Neg = true
		lhs = strings.TrimSpace(lhs[1:])
	}
	if dot := strings.IndexByte(lhs, '.'); dot >= 0 {
		suffix, err := parseSuffix(lhs[dot+1:], num)
		if err != nil {
			return eq, err
		}
		eq.Suffix = suffix
		lhs = lhs[:dot]
	}
	if !isIdent(lhs) {
		return eq, errors.Errorf("line %d: invalid equation target %q", num, lhs)
	}
	eq.Name = lhs

	for _, termText := range strings.Split(rhs, "+") {
		termText = strings.TrimSpace(termText)
		if termText == "" {
			return eq, errors.Errorf("line %d: empty product term", num)
		}
		var term []Literal
		for _, litText := range strings.Split(termText, "*") {
			litText = strings.TrimSpace(litText)
			neg := false
			if strings.HasPrefix(litText, "/") {
				neg = true
				litText = strings.TrimSpace(litText[1:])
			}
			if !isIdent(litText) {
				return eq, errors.Errorf("line %d: invalid name %q", num, litText)
			}
			term = append(term, Literal{Name: litText, Neg: neg})
		}
		eq.Terms = append(eq.Terms, term)
	}

	return eq, nil
}

func parseSuffix(s string, num int) (Suffix, error) {
	switch strings.ToUpper(s) {
	case "T":
		return SuffixT, nil
	case "R":
		return SuffixR, nil
	case "E":
		return SuffixE, nil
	case "CLK":
		return SuffixCLK, nil
	case "ARST":
		return SuffixARST, nil
	case "APRST":
		return SuffixAPRST, nil
	default:
		return SuffixNone, errors.Wrapf(gal.ErrBadSuffix, "line %d: unknown suffix .%s", num, s)
	}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
