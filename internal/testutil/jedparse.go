package testutil

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

type JEDEC struct {
	QP    int
	QF    int
	G     int
	Fuses []bool
	Csum  uint16
}

// ParseJEDEC reads back a JEDEC transmission into its fuse vector.
// Unlisted fuse indices default to zero, matching writers that skip
// all-zero rows.
func ParseJEDEC(data []byte) (JEDEC, error) {
	var j JEDEC
	s := string(data)
	s = strings.TrimPrefix(s, "\x02")
	if idx := strings.Index(s, "\x03"); idx >= 0 {
		s = s[:idx]
	}
	scanner := bufio.NewScanner(strings.NewReader(s))
	fuses := map[int]bool{}
	maxIndex := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "*QP"):
			qp, err := strconv.Atoi(strings.TrimSpace(line[3:]))
			if err != nil {
				return j, err
			}
			j.QP = qp
		case strings.HasPrefix(line, "*QF"):
			qf, err := strconv.Atoi(strings.TrimSpace(line[3:]))
			if err != nil {
				return j, err
			}
			j.QF = qf
		case strings.HasPrefix(line, "*C"):
			cs, err := strconv.ParseUint(strings.TrimSpace(line[2:]), 16, 16)
			if err != nil {
				return j, err
			}
			j.Csum = uint16(cs)
		case strings.HasPrefix(line, "*G"):
			g, err := strconv.Atoi(strings.TrimSpace(line[2:]))
			if err != nil {
				return j, err
			}
			j.G = g
		case strings.HasPrefix(line, "*L"):
			parts := strings.SplitN(line[2:], " ", 2)
			if len(parts) != 2 {
				return j, fmt.Errorf("invalid L line: %q", line)
			}
			off, err := strconv.Atoi(parts[0])
			if err != nil {
				return j, err
			}
			bits := strings.TrimSpace(parts[1])
			for i, ch := range bits {
				idx := off + i
				switch ch {
				case '1':
					fuses[idx] = true
				case '0':
					fuses[idx] = false
				default:
					return j, fmt.Errorf("invalid bit %q", ch)
				}
				if idx > maxIndex {
					maxIndex = idx
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return j, err
	}
	if j.QF == 0 {
		j.QF = maxIndex + 1
	}
	j.Fuses = make([]bool, j.QF)
	for i := range j.Fuses {
		j.Fuses[i] = fuses[i]
	}
	return j, nil
}

// FuseChecksum recomputes the *C checksum over a fuse vector.
func FuseChecksum(bits []bool) uint16 {
	var (
		bitNum  uint8
		byteVal uint8
		sum     uint16
	)
	for _, bit := range bits {
		if bit {
			byteVal |= 1 << bitNum
		}
		bitNum++
		if bitNum == 8 {
			sum += uint16(byteVal)
			byteVal = 0
			bitNum = 0
		}
	}
	return sum + uint16(byteVal)
}

type chipLayout struct {
	qf        int
	cols      int
	logicEnd  int
	rowsPer   int
	pins      []string // OLMC pin label per row group, top row first
	olmcSizes []int    // 22V10-style uneven row groups, nil otherwise
	sections  []section
}

type section struct {
	name string
	end  int
}

var layouts = map[int]chipLayout{
	2194: {
		qf: 2194, cols: 32, logicEnd: 2048, rowsPer: 8,
		pins: []string{"pin19", "pin18", "pin17", "pin16", "pin15", "pin14", "pin13", "pin12"},
		sections: []section{
			{"XOR", 2056}, {"SIG", 2120}, {"AC1", 2128}, {"PT", 2192}, {"SYN", 2193}, {"AC0", 2194},
		},
	},
	2706: {
		qf: 2706, cols: 40, logicEnd: 2560, rowsPer: 8,
		pins: []string{"pin22", "pin21", "pin20", "pin19", "pin18", "pin17", "pin16", "pin15"},
		sections: []section{
			{"XOR", 2568}, {"SIG", 2632}, {"AC1", 2640}, {"PT", 2704}, {"SYN", 2705}, {"AC0", 2706},
		},
	},
	5892: {
		qf: 5892, cols: 44, logicEnd: 5808,
		pins:      []string{"AR", "pin23", "pin22", "pin21", "pin20", "pin19", "pin18", "pin17", "pin16", "pin15", "pin14"},
		olmcSizes: []int{1, 9, 11, 13, 15, 17, 17, 15, 13, 11, 9},
		sections: []section{
			{"S0S1", 5828}, {"SIG", 5892},
		},
	},
	3274: {
		qf: 3274, cols: 40, logicEnd: 3200, rowsPer: 8,
		pins: []string{"pin23", "pin22", "pin21", "pin20", "pin19", "pin18", "pin17", "pin16", "pin15", "pin14"},
		sections: []section{
			{"XOR", 3210}, {"SIG", 3274},
		},
	},
}

// FuseSectionName labels a fuse index for diff output, based on the
// device implied by the QF count.
func FuseSectionName(qf, idx int) string {
	l, ok := layouts[qf]
	if !ok {
		return fmt.Sprintf("fuse[%d]", idx)
	}
	if idx < l.logicEnd {
		row := idx / l.cols
		col := idx % l.cols
		if l.olmcSizes != nil {
			start := 0
			for i, size := range l.olmcSizes {
				if row < start+size {
					return fmt.Sprintf("Logic %s row%d col%d", l.pins[i], row-start, col)
				}
				start += size
			}
		} else {
			group := row / l.rowsPer
			if group < len(l.pins) {
				return fmt.Sprintf("Logic %s row%d col%d", l.pins[group], row%l.rowsPer, col)
			}
		}
		return fmt.Sprintf("Logic row%d col%d", row, col)
	}
	prev := l.logicEnd
	for _, s := range l.sections {
		if idx < s.end {
			return fmt.Sprintf("%s[%d]", s.name, idx-prev)
		}
		prev = s.end
	}
	return fmt.Sprintf("unknown(%d)", idx)
}

// CompareJEDEC diffs two parsed JEDEC structs into a human-readable
// report, empty when they match.
func CompareJEDEC(got, want JEDEC) string {
	if got.QF != want.QF {
		return fmt.Sprintf("QF mismatch: got %d want %d", got.QF, want.QF)
	}
	if len(got.Fuses) != len(want.Fuses) {
		return fmt.Sprintf("fuse length mismatch: got %d want %d", len(got.Fuses), len(want.Fuses))
	}

	var buf bytes.Buffer
	mismatches := 0
	for i := range got.Fuses {
		if got.Fuses[i] != want.Fuses[i] {
			mismatches++
			gotVal, wantVal := '0', '0'
			if got.Fuses[i] {
				gotVal = '1'
			}
			if want.Fuses[i] {
				wantVal = '1'
			}
			fmt.Fprintf(&buf, "  fuse[%d] %s: got=%c want=%c\n", i, FuseSectionName(got.QF, i), gotVal, wantVal)
			if mismatches >= 40 {
				fmt.Fprintf(&buf, "  ... (%d+ mismatches, truncated)\n", mismatches)
				break
			}
		}
	}
	if mismatches == 0 {
		return ""
	}
	return fmt.Sprintf("%d fuse mismatches:\n%s", mismatches, buf.String())
}
