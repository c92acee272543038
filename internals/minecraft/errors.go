package minecraft

import "errors"

// ErrDescriptorNotFound is returned by descriptor sources when they
// don't know the requested version id
var ErrDescriptorNotFound = errors.New("version descriptor not found")

// CyclicInheritanceError is returned when a descriptor inheritance
// chain revisits an id
type CyclicInheritanceError struct {
	ID string
}

func (e *CyclicInheritanceError) Error() string {
	return "cyclic version inheritance at " + e.ID
}

// MissingParentError is returned when a descriptor names a parent the
// source cannot locate
type MissingParentError struct {
	ID string
}

func (e *MissingParentError) Error() string {
	return "missing parent version " + e.ID
}

// UnresolvableLibraryError is returned when a required library has no
// known local path
type UnresolvableLibraryError struct {
	Coordinate string
}

func (e *UnresolvableLibraryError) Error() string {
	return "no local file for library " + e.Coordinate
}

// UndefinedVariableError is returned when an argument template
// references a variable that was never bound. Launch arguments never
// fall back to empty strings: a silently missing classpath or token
// would produce a broken game, not an error.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return "undefined launch variable ${" + e.Name + "}"
}
