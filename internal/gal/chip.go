package gal

import (
	"strings"

	"github.com/pkg/errors"
)

type Chip int

const (
	ChipUnknown Chip = iota
	ChipGAL16V8
	ChipGAL20V8
	ChipGAL22V10
	ChipGAL20RA10
)

// chipData is the single source of hardware truth. Every per-chip
// constant lives here or in the mode-dependent column tables (gal.go,
// which depend on the mode fuses and so cannot be purely static).
type chipData struct {
	name      string
	numPins   int
	numRows   int
	numCols   int
	totalSize int
	minOLMC   int
	maxOLMC   int
	olmcMap   []int // start row per OLMC, indexed from the lowest OLMC pin
	olmcSize  []int // rows per OLMC, including any OE/control rows
}

var (
	chip16v8 = chipData{
		name:      "GAL16V8",
		numPins:   20,
		numRows:   64,
		numCols:   32,
		totalSize: 2194,
		minOLMC:   12,
		maxOLMC:   19,
		olmcMap:   []int{56, 48, 40, 32, 24, 16, 8, 0},
		olmcSize:  []int{8, 8, 8, 8, 8, 8, 8, 8},
	}
	chip20v8 = chipData{
		name:      "GAL20V8",
		numPins:   24,
		numRows:   64,
		numCols:   40,
		totalSize: 2706,
		minOLMC:   15,
		maxOLMC:   22,
		olmcMap:   []int{56, 48, 40, 32, 24, 16, 8, 0},
		olmcSize:  []int{8, 8, 8, 8, 8, 8, 8, 8},
	}
	chip22v10 = chipData{
		name:      "GAL22V10",
		numPins:   24,
		numRows:   132,
		numCols:   44,
		totalSize: 5892,
		minOLMC:   14,
		maxOLMC:   23,
		olmcMap:   []int{122, 111, 98, 83, 66, 49, 34, 21, 10, 1},
		olmcSize:  []int{9, 11, 13, 15, 17, 17, 15, 13, 11, 9},
	}
	chip20ra10 = chipData{
		name:      "GAL20RA10",
		numPins:   24,
		numRows:   80,
		numCols:   40,
		totalSize: 3274,
		minOLMC:   14,
		maxOLMC:   23,
		olmcMap:   []int{72, 64, 56, 48, 40, 32, 24, 16, 8, 0},
		olmcSize:  []int{8, 8, 8, 8, 8, 8, 8, 8, 8, 8},
	}
)

// Dedicated rows on the GAL22V10 for the global async-reset and
// sync-preset terms.
const (
	arRow22v10 = 0
	spRow22v10 = 131
)

var allChips = []Chip{ChipGAL16V8, ChipGAL20V8, ChipGAL22V10, ChipGAL20RA10}

// ParseChip looks up a device by its declared name.
func ParseChip(name string) (Chip, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for _, c := range allChips {
		if c.Name() == n {
			return c, nil
		}
	}
	return ChipUnknown, errors.Wrapf(ErrUnknownChip, "%q", name)
}

// ChipNames lists the supported devices in a fixed order.
func ChipNames() []string {
	names := make([]string, len(allChips))
	for i, c := range allChips {
		names[i] = c.Name()
	}
	return names
}

func (c Chip) data() chipData {
	switch c {
	case ChipGAL16V8:
		return chip16v8
	case ChipGAL20V8:
		return chip20v8
	case ChipGAL22V10:
		return chip22v10
	case ChipGAL20RA10:
		return chip20ra10
	default:
		return chipData{}
	}
}

func (c Chip) Name() string    { return c.data().name }
func (c Chip) NumPins() int    { return c.data().numPins }
func (c Chip) NumRows() int    { return c.data().numRows }
func (c Chip) NumCols() int    { return c.data().numCols }
func (c Chip) TotalSize() int  { return c.data().totalSize }
func (c Chip) LogicSize() int  { return c.data().numRows * c.data().numCols }
func (c Chip) MinOLMCPin() int { return c.data().minOLMC }
func (c Chip) MaxOLMCPin() int { return c.data().maxOLMC }
func (c Chip) NumOLMCs() int   { return c.data().maxOLMC - c.data().minOLMC + 1 }

// PinToOLMC maps an output pin number to its OLMC index (0 = lowest
// OLMC pin). Reports false for non-OLMC pins.
func (c Chip) PinToOLMC(pin int) (int, bool) {
	d := c.data()
	if pin < d.minOLMC || pin > d.maxOLMC {
		return 0, false
	}
	return pin - d.minOLMC, true
}

func (c Chip) NumRowsForOLMC(olmc int) int {
	return c.data().olmcSize[olmc]
}

// Bounds define the usable row range for an OLMC's terms.
type Bounds struct {
	StartRow  int
	MaxRows   int
	RowOffset int
}

func (c Chip) BoundsForOLMC(olmc int) Bounds {
	return Bounds{
		StartRow:  c.data().olmcMap[olmc],
		MaxRows:   c.NumRowsForOLMC(olmc),
		RowOffset: 0,
	}
}

// HasChipModes reports whether the device selects its operating mode
// through the chip-wide SYN/AC0 fuse pair rather than per OLMC.
func (c Chip) HasChipModes() bool {
	return c == ChipGAL16V8 || c == ChipGAL20V8
}
