package panel

import "fmt"

// InvalidValueError reports a value that fails a parameter's constraints.
// The panel's pending and committed state is unchanged when it is returned.
type InvalidValueError struct {
	Param  string
	Value  Value
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %s for parameter %q: %s", e.Value, e.Param, e.Reason)
}

// UnknownParameterError reports a reference to a parameter that is not
// registered on the panel.
type UnknownParameterError struct {
	Name string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("unknown parameter %q", e.Name)
}
