package pld

// Content is one parsed source file: device header, signature line,
// the declared pin list and the raw equations, in source order.
type Content struct {
	Device    string
	Signature string
	Pins      []PinDef
	Equations []Equation
}

// PinDef is one entry of the pin list, in pin-number order.
type PinDef struct {
	Name      string
	ActiveLow bool // declared with a leading slash
	NC        bool
}

// Suffix is the equation role tag on the left-hand side.
type Suffix int

const (
	SuffixNone  Suffix = iota // main combinatorial output
	SuffixT                   // tristate output
	SuffixR                   // registered output
	SuffixE                   // output enable
	SuffixCLK                 // GAL20RA10 register clock
	SuffixARST                // GAL20RA10 async reset
	SuffixAPRST               // GAL20RA10 async preset
)

func (s Suffix) String() string {
	switch s {
	case SuffixT:
		return ".T"
	case SuffixR:
		return ".R"
	case SuffixE:
		return ".E"
	case SuffixCLK:
		return ".CLK"
	case SuffixARST:
		return ".ARST"
	case SuffixAPRST:
		return ".APRST"
	default:
		return ""
	}
}

// Literal is one (possibly complemented) name inside a product term.
type Literal struct {
	Name string
	Neg  bool
}

// Equation is one LHS = RHS statement. Terms is the OR of AND terms,
// preserved exactly in source order.
type Equation struct {
	Line   int
	Name   string
	Neg    bool // slash on the left-hand side
	Suffix Suffix
	Terms  [][]Literal
}
