// Package ir lowers a PL/0 ast.Program to an LLVM IR module.
//
// Any dependency on how the module is actually produced is kept
// behind Builder. Generator walks the AST and drives a Builder;
// TextBuilder is the one implementation shipped here, and it
// accumulates LLVM IR as text. A second Builder backed by a native
// LLVM C-API binding (as the tinygo.org/x/go-llvm-based compilers in
// the wild do) is a drop-in the interface permits without touching
// Generator.
package ir

// Builder is the seam between AST-walking (Generator) and however the
// target LLVM IR module is actually produced.
type Builder interface {
	// DeclareConstGlobal emits a module-scope global-constant i64.
	DeclareConstGlobal(name string, value int64)

	// DeclareVarGlobal emits a module-scope, zero-initialized,
	// mutable global i64.
	DeclareVarGlobal(name string)

	// DeclareFunction registers a procedure as a void, zero-argument
	// function without yet emitting its body.
	DeclareFunction(name string)

	// BeginFunction opens name's body for emission. name must have
	// been passed to DeclareFunction already (main is implicit and
	// does not require a prior DeclareFunction call).
	BeginFunction(name string)

	// EndFunction closes the function opened by BeginFunction,
	// emitting a trailing `ret void` if the last instruction wasn't
	// already a terminator.
	EndFunction()

	// AllocLocal reserves stack storage for a procedure-local
	// variable, zero-initializes it, and returns the pointer
	// operand (e.g. "%x.addr") subsequent loads/stores should use.
	AllocLocal(name string) string

	// FreshTemp returns a new SSA register name for an intermediate
	// value, unique within the current function.
	FreshTemp() string

	// FreshLabel returns a new basic-block label derived from
	// parent and suffix, unique within the module (while-loop
	// lowering names blocks "<parent>.whilecondition" etc).
	FreshLabel(parent, suffix string) string

	// EmitBlock opens a new basic block with the given label.
	EmitBlock(label string)

	// Emit appends one raw instruction line to the current block.
	Emit(format string, args ...any)

	// FormatGlobal returns a reference (a getelementptr constant
	// expression) to a hoisted, arity-keyed printf/scanf format
	// string: count %i conversions, with a trailing newline when
	// newline is true. The same (count, newline) pair always yields
	// the same global.
	FormatGlobal(count int, newline bool) string

	// String renders the accumulated module as LLVM IR text.
	String() string

	// Verify performs a structural self-check in place of real LLVM
	// IR verification: every branch target has a matching block,
	// every call target was declared, nothing was left open.
	Verify() error
}
