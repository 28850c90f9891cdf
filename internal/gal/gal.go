package gal

import "github.com/pkg/errors"

// Pin represents one input to a product term: a pin number plus
// whether the complemented column is used.
type Pin struct {
	Pin int
	Neg bool
}

// Term is an OR of AND terms. Each inner slice is one AND of inputs;
// the empty inner slice is the always-true row, and no rows at all is
// the never-true term (see TrueTerm and FalseTerm).
type Term struct {
	Line int
	Pins [][]Pin
}

// GAL holds the fuse state being programmed. Fuses start intact (true);
// programming a literal or clearing a row blows fuses to false.
type GAL struct {
	Chip Chip

	Fuses []bool
	Xor   []bool
	Sig   []bool
	AC1   []bool
	PT    []bool
	Syn   bool
	AC0   bool
}

// Mode is the chip-wide operating mode of the GAL16V8/GAL20V8,
// selected through the SYN/AC0 fuse pair.
type Mode int

const (
	ModeSimple     Mode = iota + 1 // combinatorial outputs
	ModeComplex                    // tristate outputs
	ModeRegistered                 // tristate or registered outputs
)

func NewGAL(chip Chip) *GAL {
	olmcs := chip.NumOLMCs()
	g := &GAL{
		Chip:  chip,
		Fuses: make([]bool, chip.LogicSize()),
		Xor:   make([]bool, olmcs),
		Sig:   make([]bool, 64),
		AC1:   make([]bool, olmcs),
		PT:    make([]bool, 64),
	}
	for i := range g.Fuses {
		g.Fuses[i] = true
	}
	return g
}

// SetMode programs the SYN/AC0 fuse pair. Only meaningful on devices
// with chip-wide modes.
func (g *GAL) SetMode(mode Mode) {
	switch mode {
	case ModeSimple:
		g.Syn = true
		g.AC0 = false
	case ModeComplex:
		g.Syn = true
		g.AC0 = true
	case ModeRegistered:
		g.Syn = false
		g.AC0 = true
	}
}

// Mode reads the operating mode back from the mode fuses.
func (g *GAL) Mode() Mode {
	if g.Syn {
		if g.AC0 {
			return ModeComplex
		}
		return ModeSimple
	}
	return ModeRegistered
}

// needsFlip handles a GAL22V10 quirk: in registered mode the feedback
// into the array always comes from the register, before the XOR gate,
// so for active-high registered outputs every array reference to the
// pin must use the opposite polarity.
func (g *GAL) needsFlip(pin int) bool {
	if g.Chip != ChipGAL22V10 {
		return false
	}
	i, ok := g.Chip.PinToOLMC(pin)
	if !ok {
		return false
	}
	idx := g.Chip.NumOLMCs() - 1 - i
	registered := !g.AC1[idx]
	activeHigh := g.Xor[idx]
	return registered && activeHigh
}

// AddTerm writes one fuse row per product into the given row range and
// clears whatever rows remain so they never contribute.
func (g *GAL) AddTerm(term Term, bounds Bounds) error {
	b := bounds
	avail := b.MaxRows - b.RowOffset
	for _, row := range term.Pins {
		if b.RowOffset == b.MaxRows {
			if avail == 1 {
				return errors.Wrapf(ErrTooManyTerms, "line %d: only one product term allowed here, got %d", term.Line, len(term.Pins))
			}
			return errors.Wrapf(ErrTooManyTerms, "line %d: needs %d product terms, only %d available", term.Line, len(term.Pins), avail)
		}
		for _, input := range row {
			neg := input.Neg
			if g.needsFlip(input.Pin) {
				neg = !neg
			}
			if err := g.setAnd(b.StartRow+b.RowOffset, input.Pin, neg); err != nil {
				return errors.Wrapf(err, "line %d", term.Line)
			}
		}
		b.RowOffset++
	}
	g.clearRows(b)
	return nil
}

// AddTermOpt is AddTerm with a never-true term when none is given.
func (g *GAL) AddTermOpt(term *Term, bounds Bounds) error {
	if term == nil {
		return g.AddTerm(FalseTerm(0), bounds)
	}
	return g.AddTerm(*term, bounds)
}

// clearRows blows every fuse in the remaining rows so they stay false.
func (g *GAL) clearRows(bounds Bounds) {
	rowLen := g.Chip.NumCols()
	start := (bounds.StartRow + bounds.RowOffset) * rowLen
	end := (bounds.StartRow + bounds.MaxRows) * rowLen
	for i := start; i < end; i++ {
		g.Fuses[i] = false
	}
}

// setAnd connects one input (or its complement) to an AND row.
func (g *GAL) setAnd(row int, pin int, neg bool) error {
	rowLen := g.Chip.NumCols()
	col, err := g.pinToColumn(pin)
	if err != nil {
		return err
	}
	off := 0
	if neg {
		off = 1
	}
	g.Fuses[row*rowLen+col+off] = false
	return nil
}

// pinToColumn maps an input pin number to its fuse column. The mapping
// depends on the mode fuses for the GALxxV8s, so it lives here rather
// than in the static chip table.
func (g *GAL) pinToColumn(pin int) (int, error) {
	if pin < 1 || pin > g.Chip.NumPins() {
		return 0, errors.Wrapf(ErrUndefinedPin, "pin %d out of range for %s", pin, g.Chip.Name())
	}
	var table []pinCol
	switch g.Chip {
	case ChipGAL16V8:
		switch g.Mode() {
		case ModeSimple:
			table = cols16v8Simple[:]
		case ModeComplex:
			table = cols16v8Complex[:]
		default:
			table = cols16v8Registered[:]
		}
	case ChipGAL20V8:
		switch g.Mode() {
		case ModeSimple:
			table = cols20v8Simple[:]
		case ModeComplex:
			table = cols20v8Complex[:]
		default:
			table = cols20v8Registered[:]
		}
	case ChipGAL22V10:
		table = cols22v10[:]
	case ChipGAL20RA10:
		table = cols20ra10[:]
	default:
		return 0, ErrUnknownChip
	}
	entry := table[pin-1]
	if entry.err != nil {
		return 0, entry.err
	}
	return entry.col, nil
}

// TrueTerm is the always-true term: one empty row, the AND of nothing.
func TrueTerm(line int) Term {
	return Term{Line: line, Pins: [][]Pin{{}}}
}

// FalseTerm is the never-true term: no rows, the OR of nothing.
func FalseTerm(line int) Term {
	return Term{Line: line, Pins: nil}
}

// Pin-to-column tables. An entry either gives the column of the
// true-polarity fuse (the complement is the next column) or the error
// raised when the pin cannot feed the array in that mode.

type pinCol struct {
	col int
	err error
}

func col(c int) pinCol { return pinCol{col: c} }

func pwr(pin int) pinCol {
	return pinCol{err: errors.Wrapf(ErrPowerPin, "pin %d", pin)}
}

func noFB(pin int) pinCol {
	return pinCol{err: errors.Wrapf(ErrBadFeedback, "pin %d cannot feed back in simple mode", pin)}
}

func regRes(pin int, signal string) pinCol {
	return pinCol{err: errors.Wrapf(ErrModeConflict, "pin %d is reserved as %s in registered mode", pin, signal)}
}

func cplx(pin int) pinCol {
	return pinCol{err: errors.Wrapf(ErrModeConflict, "pin %d is not an input in complex mode", pin)}
}

func ra(pin int, signal string) pinCol {
	return pinCol{err: errors.Wrapf(ErrModeConflict, "pin %d is reserved as %s on the GAL20RA10", pin, signal)}
}

var cols16v8Simple = [20]pinCol{
	col(2), col(0), col(4), col(8), col(12), col(16), col(20), col(24), col(28), pwr(10),
	col(30), col(26), col(22), col(18), noFB(15), noFB(16), col(14), col(10), col(6), pwr(20),
}

var cols16v8Complex = [20]pinCol{
	col(2), col(0), col(4), col(8), col(12), col(16), col(20), col(24), col(28), pwr(10),
	col(30), cplx(12), col(26), col(22), col(18), col(14), col(10), col(6), cplx(19), pwr(20),
}

var cols16v8Registered = [20]pinCol{
	regRes(1, "Clock"), col(0), col(4), col(8), col(12), col(16), col(20), col(24), col(28), pwr(10),
	regRes(11, "/OE"), col(30), col(26), col(22), col(18), col(14), col(10), col(6), col(2), pwr(20),
}

var cols20v8Simple = [24]pinCol{
	col(2), col(0), col(4), col(8), col(12), col(16), col(20), col(24), col(28), col(32), col(36), pwr(12),
	col(38), col(34), col(30), col(26), col(22), noFB(18), noFB(19), col(18), col(14), col(10), col(6), pwr(24),
}

var cols20v8Complex = [24]pinCol{
	col(2), col(0), col(4), col(8), col(12), col(16), col(20), col(24), col(28), col(32), col(36), pwr(12),
	col(38), col(34), cplx(15), col(30), col(26), col(22), col(18), col(14), col(10), cplx(22), col(6), pwr(24),
}

var cols20v8Registered = [24]pinCol{
	regRes(1, "Clock"), col(0), col(4), col(8), col(12), col(16), col(20), col(24), col(28), col(32), col(36), pwr(12),
	regRes(13, "/OE"), col(38), col(34), col(30), col(26), col(22), col(18), col(14), col(10), col(6), col(2), pwr(24),
}

var cols22v10 = [24]pinCol{
	col(0), col(4), col(8), col(12), col(16), col(20), col(24), col(28), col(32), col(36), col(40), pwr(12),
	col(42), col(38), col(34), col(30), col(26), col(22), col(18), col(14), col(10), col(6), col(2), pwr(24),
}

var cols20ra10 = [24]pinCol{
	ra(1, "/PL"), col(0), col(4), col(8), col(12), col(16), col(20), col(24), col(28), col(32), col(36), pwr(12),
	ra(13, "/OE"), col(38), col(34), col(30), col(26), col(22), col(18), col(14), col(10), col(6), col(2), pwr(24),
}
