package invocation

import (
	"strings"
)

// MaskedValue replaces masked arguments when a plan is rendered for display.
const MaskedValue = "******"

// Arg is one command-line argument. Masked arguments are never rendered in
// clear by String.
type Arg struct {
	Value  string
	Masked bool
}

// Plan is the fully assembled packer invocation for one build.
type Plan struct {
	Args []Arg
	// Dir is the working directory packer runs in.
	Dir string
	// TempFiles lists every file created while building the plan, in creation
	// order. They are not removed by packerci.
	TempFiles []string
}

// Argv returns the plain argument vector.
func (p *Plan) Argv() []string {
	argv := make([]string, len(p.Args))
	for i, a := range p.Args {
		argv[i] = a.Value
	}
	return argv
}

// Executable returns the first argument.
func (p *Plan) Executable() string {
	if len(p.Args) == 0 {
		return ""
	}
	return p.Args[0].Value
}

// Template returns the last argument, which is always the template path.
func (p *Plan) Template() string {
	if len(p.Args) == 0 {
		return ""
	}
	return p.Args[len(p.Args)-1].Value
}

// String renders the command line with masked arguments hidden. Arguments
// containing spaces or quotes are quoted.
func (p *Plan) String() string {
	parts := make([]string, len(p.Args))
	for i, a := range p.Args {
		switch {
		case a.Masked:
			parts[i] = MaskedValue
		case a.Value == "" || strings.ContainsAny(a.Value, " \t\"'"):
			parts[i] = `"` + strings.ReplaceAll(a.Value, `"`, `\"`) + `"`
		default:
			parts[i] = a.Value
		}
	}
	return strings.Join(parts, " ")
}

func (p *Plan) add(value string, masked bool) {
	p.Args = append(p.Args, Arg{Value: value, Masked: masked})
}
