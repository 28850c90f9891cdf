package gal

import "github.com/pkg/errors"

// Build constructs the fuse map for a blueprint. Any validation
// failure aborts the whole build; no partial fuse state is returned.
func Build(bp *Blueprint) (*GAL, error) {
	g := NewGAL(bp.Chip)

	var err error
	switch bp.Chip {
	case ChipGAL16V8, ChipGAL20V8:
		err = buildV8(g, bp)
	case ChipGAL22V10:
		err = build22v10(g, bp)
	case ChipGAL20RA10:
		err = build20ra10(g, bp)
	default:
		err = ErrUnknownChip
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func buildV8(g *GAL, bp *Blueprint) error {
	if err := checkNoRegisterControls(bp); err != nil {
		return err
	}
	setSig(g, bp.Sig)
	g.SetMode(analyseMode(bp.OLMC))
	// Pure combinatorial outputs exist only in simple mode; in the
	// other modes they are implemented as always-enabled tristate.
	comIsTri := g.Mode() != ModeSimple
	setTristate(g, bp, comIsTri)
	setXors(g, bp)
	if err := setCoreEqns(g, bp); err != nil {
		return err
	}
	setPTs(g)
	return nil
}

func build22v10(g *GAL, bp *Blueprint) error {
	if err := checkNoRegisterControls(bp); err != nil {
		return err
	}
	setSig(g, bp.Sig)
	// AC1 and XOR must be in place before any term is written: the
	// registered-feedback polarity fix reads them.
	setTristate(g, bp, true)
	setXors(g, bp)
	if err := setCoreEqns(g, bp); err != nil {
		return err
	}
	return setARSP(g, bp)
}

func build20ra10(g *GAL, bp *Blueprint) error {
	if bp.AR != nil || bp.SP != nil {
		return errors.Wrap(ErrBadSuffix, "AR/SP are only available on the GAL22V10")
	}
	setSig(g, bp.Sig)
	setXors(g, bp)
	if err := setCoreEqns(g, bp); err != nil {
		return err
	}
	return setAuxEqns(g, bp)
}

// setSig writes the signature fuses, MSB first, 8 bytes max.
func setSig(g *GAL, sig []byte) {
	for i := 0; i < len(sig) && i < 8; i++ {
		c := sig[i]
		for j := 0; j < 8; j++ {
			g.Sig[i*8+j] = (c<<j)&0x80 != 0
		}
	}
}

// setTristate programs the AC1 bits: set for tristate outputs, for
// combinatorial outputs implemented as tristate, and for OLMC pins
// used purely as inputs.
func setTristate(g *GAL, bp *Blueprint, comIsTri bool) {
	n := len(bp.OLMC)
	for i := range bp.OLMC {
		olmc := &bp.OLMC[i]
		var tri bool
		switch olmc.PinMode {
		case PinModeNone:
			tri = olmc.Feedback
		case PinModeTristate:
			tri = true
		case PinModeCombinatorial:
			tri = comIsTri
		case PinModeRegistered:
			tri = false
		}
		if tri {
			g.AC1[n-1-i] = true
		}
	}
}

// setXors programs the polarity fuses for active-high outputs.
func setXors(g *GAL, bp *Blueprint) {
	n := len(bp.OLMC)
	for i := range bp.OLMC {
		if bp.OLMC[i].Output != nil && bp.OLMC[i].Active == ActiveHigh {
			g.Xor[n-1-i] = true
		}
	}
}

// The PT fuses are unused on the GALxxV8s and left all set.
func setPTs(g *GAL) {
	for i := range g.PT {
		g.PT[i] = true
	}
}

// setCoreEqns writes each OLMC's main term and tristate-enable term.
// Undriven outputs get all their rows cleared, never-true.
func setCoreEqns(g *GAL, bp *Blueprint) error {
	for i := range bp.OLMC {
		olmc := &bp.OLMC[i]
		bounds := g.Chip.BoundsForOLMC(i)

		if olmc.Output != nil {
			b := adjustMainBounds(g, olmc, bounds)
			if err := g.AddTerm(*olmc.Output, b); err != nil {
				return errors.Wrapf(err, "output %s", olmc.Name)
			}
		} else {
			if err := g.AddTerm(FalseTerm(0), bounds); err != nil {
				return err
			}
		}

		if olmc.TriCon != nil {
			if err := checkTristate(g.Chip, olmc); err != nil {
				return err
			}
			oeBounds := Bounds{StartRow: bounds.StartRow, MaxRows: 1}
			if err := g.AddTerm(*olmc.TriCon, oeBounds); err != nil {
				return errors.Wrapf(err, "enable for %s", olmc.Name)
			}
		}
	}
	return nil
}

// setARSP writes the GAL22V10's dedicated async-reset and sync-preset
// rows, clearing them when no equation was given.
func setARSP(g *GAL, bp *Blueprint) error {
	if err := g.AddTermOpt(bp.AR, Bounds{StartRow: arRow22v10, MaxRows: 1}); err != nil {
		return errors.Wrap(err, "AR")
	}
	if err := g.AddTermOpt(bp.SP, Bounds{StartRow: spRow22v10, MaxRows: 1}); err != nil {
		return errors.Wrap(err, "SP")
	}
	return nil
}

// setAuxEqns writes the GAL20RA10's per-OLMC CLK, ARST and APRST rows.
func setAuxEqns(g *GAL, bp *Blueprint) error {
	for i := range bp.OLMC {
		olmc := &bp.OLMC[i]
		bounds := g.Chip.BoundsForOLMC(i)

		if err := checkAux(olmc.Clock, olmc, ".CLK"); err != nil {
			return err
		}
		if err := checkAux(olmc.ARst, olmc, ".ARST"); err != nil {
			return err
		}
		if err := checkAux(olmc.APRst, olmc, ".APRST"); err != nil {
			return err
		}

		if olmc.PinMode == PinModeRegistered {
			arstB := bounds
			arstB.RowOffset, arstB.MaxRows = 2, 3
			if err := g.AddTermOpt(olmc.ARst, arstB); err != nil {
				return errors.Wrapf(err, "reset for %s", olmc.Name)
			}
			aprstB := bounds
			aprstB.RowOffset, aprstB.MaxRows = 3, 4
			if err := g.AddTermOpt(olmc.APRst, aprstB); err != nil {
				return errors.Wrapf(err, "preset for %s", olmc.Name)
			}
			if olmc.Clock == nil {
				return errors.Wrapf(ErrNoClock, "registered output %s needs a .CLK equation", olmc.Name)
			}
		}

		// Non-registered outputs still get their clock row forced
		// to its default.
		if olmc.Output != nil {
			clkB := bounds
			clkB.RowOffset, clkB.MaxRows = 1, 2
			if err := g.AddTermOpt(olmc.Clock, clkB); err != nil {
				return errors.Wrapf(err, "clock for %s", olmc.Name)
			}
		}
	}
	return nil
}

// adjustMainBounds skips whatever leading rows the chip reserves for
// enable and register-control terms.
func adjustMainBounds(g *GAL, olmc *OLMC, b Bounds) Bounds {
	switch g.Chip {
	case ChipGAL16V8, ChipGAL20V8:
		// Registered outputs have no enable row, and simple mode
		// has no enable rows at all.
		if g.Mode() == ModeSimple || olmc.PinMode == PinModeRegistered {
			return b
		}
		b.RowOffset = 1
	case ChipGAL22V10:
		b.RowOffset = 1
	case ChipGAL20RA10:
		// OE, CLK, ARST, APRST occupy the first four rows.
		b.RowOffset = 4
	}
	return b
}

// checkTristate validates that an enable equation's target can carry
// one in the resolved configuration.
func checkTristate(chip Chip, olmc *OLMC) error {
	switch {
	case olmc.Output == nil:
		return errors.Wrapf(ErrBadSuffix, "%s.E given but %s has no output equation", olmc.Name, olmc.Name)
	case olmc.PinMode == PinModeRegistered && chip.HasChipModes():
		return errors.Wrapf(ErrModeConflict, "%s: registered outputs on the %s have no tristate enable", olmc.Name, chip.Name())
	case olmc.PinMode == PinModeCombinatorial:
		return errors.Wrapf(ErrBadSuffix, "%s.E needs a tristate (.T) or registered (.R) output", olmc.Name)
	}
	return nil
}

// checkAux validates a GAL20RA10 register-control equation.
func checkAux(term *Term, olmc *OLMC, suffix string) error {
	if term == nil {
		return nil
	}
	switch olmc.PinMode {
	case PinModeNone:
		return errors.Wrapf(ErrBadSuffix, "%s%s given but %s has no output equation", olmc.Name, suffix, olmc.Name)
	case PinModeRegistered:
		return nil
	default:
		return errors.Wrapf(ErrBadSuffix, "%s%s is only valid for registered outputs", olmc.Name, suffix)
	}
}

// checkNoRegisterControls rejects GAL20RA10-only control equations on
// the other devices.
func checkNoRegisterControls(bp *Blueprint) error {
	for i := range bp.OLMC {
		olmc := &bp.OLMC[i]
		for _, c := range []struct {
			term   *Term
			suffix string
		}{
			{olmc.Clock, ".CLK"},
			{olmc.ARst, ".ARST"},
			{olmc.APRst, ".APRST"},
		} {
			if c.term != nil {
				return errors.Wrapf(ErrBadSuffix, "line %d: %s%s is only available on the GAL20RA10", c.term.Line, olmc.Name, c.suffix)
			}
		}
	}
	return nil
}
