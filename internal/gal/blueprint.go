package gal

// Active indicates the declared output polarity, taken from the pin
// list (a leading slash declares an active-low output).
type Active int

const (
	ActiveLow Active = iota
	ActiveHigh
)

// PinMode is the macrocell behavior an output's equations require.
type PinMode int

const (
	PinModeNone PinMode = iota // no output equation
	PinModeCombinatorial
	PinModeTristate
	PinModeRegistered
)

func (m PinMode) String() string {
	switch m {
	case PinModeCombinatorial:
		return "combinatorial"
	case PinModeTristate:
		return "tristate"
	case PinModeRegistered:
		return "registered"
	default:
		return "unused"
	}
}

// OLMC collects everything the source said about one output macrocell.
type OLMC struct {
	Name     string
	Active   Active
	PinMode  PinMode
	Output   *Term
	TriCon   *Term // output-enable term
	Clock    *Term // GAL20RA10 register controls
	ARst     *Term
	APRst    *Term
	Feedback bool // pin appears as an input somewhere
}

// Blueprint is the fully resolved design handed to the fuse-filling
// engine. OLMCs are ordered from the lowest OLMC pin upward.
type Blueprint struct {
	Chip Chip
	Sig  []byte
	OLMC []OLMC
	AR   *Term // GAL22V10 global async reset
	SP   *Term // GAL22V10 global sync preset
}

func NewBlueprint(chip Chip) *Blueprint {
	olmcs := make([]OLMC, chip.NumOLMCs())
	for i := range olmcs {
		olmcs[i].Active = ActiveLow
	}
	return &Blueprint{Chip: chip, OLMC: olmcs}
}

// analyseMode picks the chip-wide mode for the GAL16V8/GAL20V8 from
// the outputs' requirements, preferring the cheapest mode that fits.
func analyseMode(olmcs []OLMC) Mode {
	for i := range olmcs {
		if olmcs[i].PinMode == PinModeRegistered {
			return ModeRegistered
		}
	}
	for i := range olmcs {
		if olmcs[i].PinMode == PinModeTristate {
			return ModeComplex
		}
	}
	for n := range olmcs {
		if !olmcs[n].Feedback {
			continue
		}
		if olmcs[n].PinMode == PinModeNone {
			// The two middle OLMCs have no feedback path in
			// simple mode, so they cannot be plain inputs there.
			if n == 3 || n == 4 {
				return ModeComplex
			}
		} else {
			// OLMC pins cannot be combinatorial feedback in
			// simple mode.
			return ModeComplex
		}
	}
	return ModeSimple
}
