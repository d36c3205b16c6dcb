package ir

import "fmt"

// VariableUndefinedError is returned when an identifier used in an
// expression, assignment or read/write list resolves to neither a
// local nor a module-level declaration, or when an assign/read target
// resolves to a constant. Position information is discarded by the
// time the AST reaches this stage, so only the name is carried.
type VariableUndefinedError struct {
	Name string
}

func (e *VariableUndefinedError) Error() string {
	return fmt.Sprintf("variable %q is not declared", e.Name)
}

// FunctionUndefinedError is returned by a call to a procedure name
// with no matching declaration anywhere in the program.
type FunctionUndefinedError struct {
	Name string
}

func (e *FunctionUndefinedError) Error() string {
	return fmt.Sprintf("procedure %q is not declared", e.Name)
}
