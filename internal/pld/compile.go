package pld

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/Rafaelmdcarneiro/galette/internal/gal"
)

// Compile turns parsed content into a programmed fuse map.
func Compile(c Content) (*gal.GAL, error) {
	bp, err := BuildBlueprint(c)
	if err != nil {
		return nil, err
	}
	return gal.Build(bp)
}

// BuildBlueprint resolves the parsed content against the declared chip:
// pin names to numbers, equations to per-OLMC roles. It fails with the
// first structural error; no partial blueprint is returned.
func BuildBlueprint(c Content) (*gal.Blueprint, error) {
	chip, err := gal.ParseChip(c.Device)
	if err != nil {
		return nil, err
	}

	symbols, err := buildPinTable(chip, c.Pins)
	if err != nil {
		return nil, err
	}

	bp := gal.NewBlueprint(chip)
	bp.Sig = []byte(strings.TrimSpace(c.Signature))
	for i := range bp.OLMC {
		pin := chip.MinOLMCPin() + i
		def := c.Pins[pin-1]
		if def.NC {
			bp.OLMC[i].Name = fmt.Sprintf("pin %d", pin)
		} else {
			bp.OLMC[i].Name = def.Name
			if !def.ActiveLow {
				bp.OLMC[i].Active = gal.ActiveHigh
			}
		}
	}

	for _, eq := range c.Equations {
		if err := addEquation(bp, chip, symbols, c.Pins, eq); err != nil {
			return nil, err
		}
	}

	return bp, nil
}

// buildPinTable validates the pin list layout and maps names to pin
// numbers. GND and VCC must sit on the package's power pins; NC pins
// get no name.
func buildPinTable(chip gal.Chip, pins []PinDef) (map[string]int, error) {
	if len(pins) != chip.NumPins() {
		return nil, errors.Wrapf(gal.ErrPinList, "%s has %d pins, %d declared", chip.Name(), chip.NumPins(), len(pins))
	}
	gndPin := chip.NumPins() / 2
	vccPin := chip.NumPins()

	symbols := make(map[string]int)
	for i, def := range pins {
		pin := i + 1
		if def.NC {
			continue
		}
		switch strings.ToUpper(def.Name) {
		case "GND":
			if pin != gndPin {
				return nil, errors.Wrapf(gal.ErrPinList, "GND must be pin %d, not %d", gndPin, pin)
			}
			continue
		case "VCC":
			if pin != vccPin {
				return nil, errors.Wrapf(gal.ErrPinList, "VCC must be pin %d, not %d", vccPin, pin)
			}
			continue
		case "AR", "SP":
			if chip == gal.ChipGAL22V10 {
				return nil, errors.Wrapf(gal.ErrPinList, "%s is a reserved name on the %s", def.Name, chip.Name())
			}
		}
		if pin == gndPin || pin == vccPin {
			return nil, errors.Wrapf(gal.ErrPinList, "pin %d must be %s", pin, map[int]string{gndPin: "GND", vccPin: "VCC"}[pin])
		}
		if _, dup := symbols[def.Name]; dup {
			return nil, errors.Wrapf(gal.ErrPinList, "pin name %s repeated", def.Name)
		}
		symbols[def.Name] = pin
	}
	if !strings.EqualFold(pins[gndPin-1].Name, "GND") {
		return nil, errors.Wrapf(gal.ErrPinList, "pin %d must be GND", gndPin)
	}
	if !strings.EqualFold(pins[vccPin-1].Name, "VCC") {
		return nil, errors.Wrapf(gal.ErrPinList, "pin %d must be VCC", vccPin)
	}
	return symbols, nil
}

func addEquation(bp *gal.Blueprint, chip gal.Chip, symbols map[string]int, pins []PinDef, eq Equation) error {
	// Global AR/SP terms, GAL22V10 only.
	if upper := strings.ToUpper(eq.Name); upper == "AR" || upper == "SP" {
		if chip != gal.ChipGAL22V10 {
			return errors.Wrapf(gal.ErrBadSuffix, "line %d: %s is only available on the GAL22V10", eq.Line, upper)
		}
		if eq.Suffix != SuffixNone || eq.Neg {
			return errors.Wrapf(gal.ErrBadSuffix, "line %d: %s takes no suffix or polarity", eq.Line, upper)
		}
		term, err := resolveTerm(bp, chip, symbols, eq)
		if err != nil {
			return err
		}
		slot := &bp.AR
		if upper == "SP" {
			slot = &bp.SP
		}
		appendTerm(slot, term)
		return nil
	}

	pin, ok := symbols[eq.Name]
	if !ok {
		return errors.Wrapf(gal.ErrUndefinedPin, "line %d: %s", eq.Line, eq.Name)
	}
	if eq.Neg && !pins[pin-1].ActiveLow {
		return errors.Wrapf(gal.ErrUndefinedPin, "line %d: /%s contradicts the pin list declaration", eq.Line, eq.Name)
	}
	olmcIdx, ok := chip.PinToOLMC(pin)
	if !ok {
		return errors.Wrapf(gal.ErrNotAnOutput, "line %d: %s (pin %d)", eq.Line, eq.Name, pin)
	}
	olmc := &bp.OLMC[olmcIdx]

	term, err := resolveTerm(bp, chip, symbols, eq)
	if err != nil {
		return err
	}

	switch eq.Suffix {
	case SuffixNone, SuffixT, SuffixR:
		mode := gal.PinModeCombinatorial
		switch eq.Suffix {
		case SuffixT:
			mode = gal.PinModeTristate
		case SuffixR:
			mode = gal.PinModeRegistered
		}
		if olmc.Output != nil && olmc.PinMode != mode {
			return errors.Wrapf(gal.ErrModeConflict, "line %d: %s is already %s, cannot also be %s", eq.Line, eq.Name, olmc.PinMode, mode)
		}
		olmc.PinMode = mode
		appendTerm(&olmc.Output, term)
	case SuffixE:
		appendTerm(&olmc.TriCon, term)
	case SuffixCLK:
		appendTerm(&olmc.Clock, term)
	case SuffixARST:
		appendTerm(&olmc.ARst, term)
	case SuffixAPRST:
		appendTerm(&olmc.APRst, term)
	default:
		return errors.Wrapf(gal.ErrBadSuffix, "line %d: %s%s", eq.Line, eq.Name, eq.Suffix)
	}
	return nil
}

// appendTerm merges repeated equations for the same output and role by
// concatenating their product terms in source order.
func appendTerm(slot **gal.Term, term gal.Term) {
	if *slot == nil {
		t := term
		*slot = &t
		return
	}
	(*slot).Pins = append((*slot).Pins, term.Pins...)
}

// resolveTerm maps an equation's right-hand side to pin numbers and
// marks feedback on every OLMC pin it references. VCC and GND are only
// legal as the entire right-hand side; they use the legacy constant
// encodings (one all-don't-care row, or no rows at all).
func resolveTerm(bp *gal.Blueprint, chip gal.Chip, symbols map[string]int, eq Equation) (gal.Term, error) {
	if name, ok := soloLiteral(eq); ok {
		switch strings.ToUpper(name) {
		case "VCC":
			return gal.TrueTerm(eq.Line), nil
		case "GND":
			return gal.FalseTerm(eq.Line), nil
		}
	}

	term := gal.Term{Line: eq.Line, Pins: make([][]gal.Pin, 0, len(eq.Terms))}
	for _, product := range eq.Terms {
		row := make([]gal.Pin, 0, len(product))
		for _, lit := range product {
			switch strings.ToUpper(lit.Name) {
			case "VCC", "GND":
				return gal.Term{}, errors.Wrapf(gal.ErrSoloPower, "line %d: %s inside a product term", eq.Line, lit.Name)
			}
			pin, ok := symbols[lit.Name]
			if !ok {
				return gal.Term{}, errors.Wrapf(gal.ErrUndefinedPin, "line %d: %s", eq.Line, lit.Name)
			}
			if i, isOLMC := chip.PinToOLMC(pin); isOLMC {
				bp.OLMC[i].Feedback = true
			}
			row = append(row, gal.Pin{Pin: pin, Neg: lit.Neg})
		}
		term.Pins = append(term.Pins, row)
	}
	return term, nil
}

// soloLiteral reports the single literal of a one-term, one-literal,
// non-negated right-hand side.
func soloLiteral(eq Equation) (string, bool) {
	if len(eq.Terms) != 1 || len(eq.Terms[0]) != 1 || eq.Terms[0][0].Neg {
		return "", false
	}
	return eq.Terms[0][0].Name, true
}
