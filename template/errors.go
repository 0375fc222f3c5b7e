package template

import "fmt"

// ArityError reports an argument count that does not match the
// template's placeholder count. It is raised before any substitution or
// parsing happens.
type ArityError struct {
	Required int
	Provided int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("this template requires %d parameters; %d provided", e.Required, e.Provided)
}

// ScopeError reports an application whose scope or coordinate is
// incompatible with what the template produced.
type ScopeError struct {
	Reason string
}

func (e *ScopeError) Error() string { return e.Reason }

// RequireError reports a malformed library name passed to the builder.
// It surfaces at configuration time, not at apply time.
type RequireError struct {
	Name   string
	Reason string
}

func (e *RequireError) Error() string {
	return fmt.Sprintf("invalid require %q: %s", e.Name, e.Reason)
}
