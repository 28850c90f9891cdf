package gal

import (
	"testing"

	"github.com/pkg/errors"
)

func TestParseChip(t *testing.T) {
	cases := []struct {
		name string
		want Chip
	}{
		{"GAL16V8", ChipGAL16V8},
		{"gal16v8", ChipGAL16V8},
		{" GAL20V8 ", ChipGAL20V8},
		{"GAL22V10", ChipGAL22V10},
		{"gal20ra10", ChipGAL20RA10},
	}
	for _, tc := range cases {
		got, err := ParseChip(tc.name)
		if err != nil {
			t.Fatalf("ParseChip(%q): %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("ParseChip(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseChipUnknown(t *testing.T) {
	_, err := ParseChip("GAL18V10")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Cause(err) != ErrUnknownChip {
		t.Fatalf("wrong error kind: %v", err)
	}
}

func TestGeometry(t *testing.T) {
	cases := []struct {
		chip    Chip
		logic   int
		trailer int
	}{
		{ChipGAL16V8, 2048, 146},   // XOR 8 + SIG 64 + AC1 8 + PT 64 + SYN + AC0
		{ChipGAL20V8, 2560, 146},   // same trailer as the 16V8
		{ChipGAL22V10, 5808, 84},   // S0/S1 20 + SIG 64
		{ChipGAL20RA10, 3200, 74},  // XOR 10 + SIG 64
	}
	for _, tc := range cases {
		if got := tc.chip.LogicSize(); got != tc.logic {
			t.Errorf("%s logic size = %d, want %d", tc.chip.Name(), got, tc.logic)
		}
		if got := tc.chip.TotalSize(); got != tc.logic+tc.trailer {
			t.Errorf("%s total size = %d, want %d", tc.chip.Name(), got, tc.logic+tc.trailer)
		}
	}
}

func TestBoundsCoverRows(t *testing.T) {
	for _, chip := range allChips {
		rows := 0
		for i := 0; i < chip.NumOLMCs(); i++ {
			b := chip.BoundsForOLMC(i)
			if b.StartRow < 0 || b.StartRow+b.MaxRows > chip.NumRows() {
				t.Errorf("%s OLMC %d bounds out of range: %+v", chip.Name(), i, b)
			}
			rows += b.MaxRows
		}
		dedicated := 0
		if chip == ChipGAL22V10 {
			dedicated = 2 // AR and SP rows
		}
		if rows+dedicated != chip.NumRows() {
			t.Errorf("%s OLMC rows %d + dedicated %d != %d", chip.Name(), rows, dedicated, chip.NumRows())
		}
	}
}

func TestPinToOLMC(t *testing.T) {
	cases := []struct {
		chip Chip
		pin  int
		idx  int
		ok   bool
	}{
		{ChipGAL16V8, 12, 0, true},
		{ChipGAL16V8, 19, 7, true},
		{ChipGAL16V8, 11, 0, false},
		{ChipGAL16V8, 20, 0, false},
		{ChipGAL20V8, 15, 0, true},
		{ChipGAL20V8, 22, 7, true},
		{ChipGAL22V10, 14, 0, true},
		{ChipGAL22V10, 23, 9, true},
		{ChipGAL20RA10, 18, 4, true},
	}
	for _, tc := range cases {
		idx, ok := tc.chip.PinToOLMC(tc.pin)
		if ok != tc.ok || (ok && idx != tc.idx) {
			t.Errorf("%s PinToOLMC(%d) = %d,%v want %d,%v", tc.chip.Name(), tc.pin, idx, ok, tc.idx, tc.ok)
		}
	}
}

func TestChipNames(t *testing.T) {
	names := ChipNames()
	if len(names) != 4 || names[0] != "GAL16V8" || names[3] != "GAL20RA10" {
		t.Fatalf("unexpected device list: %v", names)
	}
}
