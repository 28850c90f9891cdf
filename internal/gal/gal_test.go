package gal

import (
	"testing"

	"github.com/pkg/errors"
)

func TestModeFuses(t *testing.T) {
	g := NewGAL(ChipGAL16V8)
	cases := []struct {
		mode Mode
		syn  bool
		ac0  bool
	}{
		{ModeSimple, true, false},
		{ModeComplex, true, true},
		{ModeRegistered, false, true},
	}
	for _, tc := range cases {
		g.SetMode(tc.mode)
		if g.Syn != tc.syn || g.AC0 != tc.ac0 {
			t.Errorf("mode %v: SYN=%v AC0=%v, want %v/%v", tc.mode, g.Syn, g.AC0, tc.syn, tc.ac0)
		}
		if g.Mode() != tc.mode {
			t.Errorf("mode round trip failed for %v", tc.mode)
		}
	}
}

func TestNewGALStartsIntact(t *testing.T) {
	g := NewGAL(ChipGAL22V10)
	if len(g.Fuses) != ChipGAL22V10.LogicSize() {
		t.Fatalf("fuse array length %d", len(g.Fuses))
	}
	for i, f := range g.Fuses {
		if !f {
			t.Fatalf("fuse %d not intact", i)
		}
	}
	if len(g.Xor) != 10 || len(g.AC1) != 10 || len(g.Sig) != 64 {
		t.Fatal("wrong config fuse sizes")
	}
}

func TestAddTermWritesRows(t *testing.T) {
	g := NewGAL(ChipGAL22V10)
	// Pin 2 is column 4, pin 23 is column 2 on the 22V10.
	term := Term{Line: 1, Pins: [][]Pin{
		{{Pin: 2, Neg: false}},
		{{Pin: 2, Neg: true}, {Pin: 23, Neg: false}},
	}}
	b := Bounds{StartRow: 10, MaxRows: 4}
	if err := g.AddTerm(term, b); err != nil {
		t.Fatal(err)
	}
	cols := g.Chip.NumCols()
	if g.Fuses[10*cols+4] {
		t.Error("row 10: pin 2 true column not programmed")
	}
	if !g.Fuses[10*cols+5] {
		t.Error("row 10: pin 2 complement column wrongly programmed")
	}
	if g.Fuses[11*cols+5] || g.Fuses[11*cols+2] {
		t.Error("row 11 literals not programmed")
	}
	// Rows 12 and 13 must be cleared, never-true.
	for i := 12 * cols; i < 14*cols; i++ {
		if g.Fuses[i] {
			t.Fatalf("unused row fuse %d left intact", i)
		}
	}
}

func TestAddTermTooManyProducts(t *testing.T) {
	g := NewGAL(ChipGAL22V10)
	term := Term{Line: 7, Pins: [][]Pin{{}, {}, {}}}
	err := g.AddTerm(term, Bounds{StartRow: 0, MaxRows: 2})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Cause(err) != ErrTooManyTerms {
		t.Fatalf("wrong error kind: %v", err)
	}
}

func TestAddTermSingleRowOverflow(t *testing.T) {
	g := NewGAL(ChipGAL22V10)
	term := Term{Line: 3, Pins: [][]Pin{{}, {}}}
	err := g.AddTerm(term, Bounds{StartRow: 0, MaxRows: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Cause(err) != ErrTooManyTerms {
		t.Fatalf("wrong error kind: %v", err)
	}
}

func TestTrueAndFalseTerms(t *testing.T) {
	g := NewGAL(ChipGAL22V10)
	cols := g.Chip.NumCols()

	if err := g.AddTerm(TrueTerm(0), Bounds{StartRow: 0, MaxRows: 1}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < cols; i++ {
		if !g.Fuses[i] {
			t.Fatal("true term must leave its row all intact")
		}
	}

	if err := g.AddTerm(FalseTerm(0), Bounds{StartRow: 1, MaxRows: 1}); err != nil {
		t.Fatal(err)
	}
	for i := cols; i < 2*cols; i++ {
		if g.Fuses[i] {
			t.Fatal("false term must clear its rows")
		}
	}
}

func TestPinToColumnRestrictions(t *testing.T) {
	cases := []struct {
		chip Chip
		mode Mode
		pin  int
		kind error
	}{
		{ChipGAL16V8, ModeSimple, 10, ErrPowerPin},
		{ChipGAL16V8, ModeSimple, 15, ErrBadFeedback},
		{ChipGAL16V8, ModeSimple, 16, ErrBadFeedback},
		{ChipGAL16V8, ModeComplex, 12, ErrModeConflict},
		{ChipGAL16V8, ModeComplex, 19, ErrModeConflict},
		{ChipGAL16V8, ModeRegistered, 1, ErrModeConflict},
		{ChipGAL16V8, ModeRegistered, 11, ErrModeConflict},
		{ChipGAL20V8, ModeSimple, 18, ErrBadFeedback},
		{ChipGAL20V8, ModeComplex, 15, ErrModeConflict},
		{ChipGAL20V8, ModeRegistered, 13, ErrModeConflict},
	}
	for _, tc := range cases {
		g := NewGAL(tc.chip)
		g.SetMode(tc.mode)
		_, err := g.pinToColumn(tc.pin)
		if err == nil {
			t.Errorf("%s mode %v pin %d: expected error", tc.chip.Name(), tc.mode, tc.pin)
			continue
		}
		if errors.Cause(err) != tc.kind {
			t.Errorf("%s mode %v pin %d: wrong kind: %v", tc.chip.Name(), tc.mode, tc.pin, err)
		}
	}
}

func TestPinToColumnFixedChips(t *testing.T) {
	g := NewGAL(ChipGAL20RA10)
	if _, err := g.pinToColumn(1); errors.Cause(err) != ErrModeConflict {
		t.Errorf("pin 1 on the 20RA10 should be reserved: %v", err)
	}
	col, err := g.pinToColumn(2)
	if err != nil || col != 0 {
		t.Errorf("pin 2 = col %d, %v", col, err)
	}
	col, err = g.pinToColumn(23)
	if err != nil || col != 2 {
		t.Errorf("pin 23 = col %d, %v", col, err)
	}
}

func TestNeedsFlip(t *testing.T) {
	g := NewGAL(ChipGAL22V10)
	// Pin 18 is OLMC 4, config index 5.
	idx := g.Chip.NumOLMCs() - 1 - 4
	g.Xor[idx] = true  // active high
	g.AC1[idx] = false // registered
	if !g.needsFlip(18) {
		t.Error("registered active-high 22V10 output must flip")
	}
	g.AC1[idx] = true
	if g.needsFlip(18) {
		t.Error("tristate output must not flip")
	}
	g16 := NewGAL(ChipGAL16V8)
	g16.Xor[0] = true
	if g16.needsFlip(19) {
		t.Error("flip is a 22V10-only quirk")
	}
}
