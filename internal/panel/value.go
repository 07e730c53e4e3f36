package panel

import "fmt"

// Kind tags the variant held by a Value.
type Kind int

const (
	KindScalar Kind = iota
	KindRange
	KindChoice
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindRange:
		return "range"
	case KindChoice:
		return "choice"
	case KindBool:
		return "bool"
	}
	return "unknown"
}

// Value is a tagged variant: a continuous scalar, a [lo, hi] pair, an
// enumerated string, or a boolean.
type Value struct {
	kind   Kind
	num    float64
	lo, hi float64
	choice string
	flag   bool
}

func Scalar(v float64) Value    { return Value{kind: KindScalar, num: v} }
func Span(lo, hi float64) Value { return Value{kind: KindRange, lo: lo, hi: hi} }
func Choice(s string) Value     { return Value{kind: KindChoice, choice: s} }
func Bool(b bool) Value         { return Value{kind: KindBool, flag: b} }

func (v Value) Kind() Kind             { return v.kind }
func (v Value) Scalar() float64        { return v.num }
func (v Value) Span() (lo, hi float64) { return v.lo, v.hi }
func (v Value) Choice() string         { return v.choice }
func (v Value) Bool() bool             { return v.flag }

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return v.num == o.num
	case KindRange:
		return v.lo == o.lo && v.hi == o.hi
	case KindChoice:
		return v.choice == o.choice
	case KindBool:
		return v.flag == o.flag
	}
	return false
}

func (v Value) String() string {
	switch v.kind {
	case KindScalar:
		return fmt.Sprintf("%g", v.num)
	case KindRange:
		return fmt.Sprintf("[%g, %g]", v.lo, v.hi)
	case KindChoice:
		return v.choice
	case KindBool:
		if v.flag {
			return "on"
		}
		return "off"
	}
	return "?"
}

// Policy controls when a staged value becomes committed.
type Policy int

const (
	// Immediate commits synchronously inside Set.
	Immediate Policy = iota
	// Throttled holds the staged value until Commit is called.
	Throttled
)

func (p Policy) String() string {
	if p == Throttled {
		return "throttled"
	}
	return "immediate"
}

// Param declares a named, typed, user-controllable input with its
// constraints, default value, and commit policy.
type Param struct {
	Name    string
	Kind    Kind
	Policy  Policy
	Min     float64 // lower bound for scalar and range kinds
	Max     float64 // upper bound for scalar and range kinds
	Options []string
	Default Value
}

func ScalarParam(name string, min, max, def float64, policy Policy) Param {
	return Param{Name: name, Kind: KindScalar, Policy: policy, Min: min, Max: max, Default: Scalar(def)}
}

func RangeParam(name string, min, max, lo, hi float64, policy Policy) Param {
	return Param{Name: name, Kind: KindRange, Policy: policy, Min: min, Max: max, Default: Span(lo, hi)}
}

func ChoiceParam(name string, options []string, def string, policy Policy) Param {
	return Param{Name: name, Kind: KindChoice, Policy: policy, Options: options, Default: Choice(def)}
}

func BoolParam(name string, def bool, policy Policy) Param {
	return Param{Name: name, Kind: KindBool, Policy: policy, Default: Bool(def)}
}

// validate checks v against the parameter's kind and constraints.
func (p Param) validate(v Value) error {
	if v.kind != p.Kind {
		return &InvalidValueError{Param: p.Name, Value: v,
			Reason: fmt.Sprintf("kind mismatch: want %s, got %s", p.Kind, v.kind)}
	}
	switch p.Kind {
	case KindScalar:
		if v.num < p.Min || v.num > p.Max {
			return &InvalidValueError{Param: p.Name, Value: v,
				Reason: fmt.Sprintf("out of bounds [%g, %g]", p.Min, p.Max)}
		}
	case KindRange:
		if v.lo > v.hi {
			return &InvalidValueError{Param: p.Name, Value: v, Reason: "lo exceeds hi"}
		}
		if v.lo < p.Min || v.hi > p.Max {
			return &InvalidValueError{Param: p.Name, Value: v,
				Reason: fmt.Sprintf("out of bounds [%g, %g]", p.Min, p.Max)}
		}
	case KindChoice:
		for _, opt := range p.Options {
			if opt == v.choice {
				return nil
			}
		}
		return &InvalidValueError{Param: p.Name, Value: v,
			Reason: fmt.Sprintf("not in allowed set %v", p.Options)}
	}
	return nil
}
