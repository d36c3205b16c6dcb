package ir

import (
	"fmt"
	"strings"
)

// function tracks the per-function state needed while emitting a
// body and while later verifying it.
type function struct {
	name          string
	lines         []string
	labels        map[string]bool
	branchTargets []string
	tempCounter   int
	terminated    bool
}

type formatKey struct {
	count   int
	newline bool
}

// TextBuilder is the Builder implementation that writes LLVM IR as
// plain text - see the package doc for why this, and not a native
// binding, is what Generator is built against.
type TextBuilder struct {
	globalLines []string

	declared map[string]bool
	funcs    map[string]*function
	funcOrder []string
	current  *function

	labelSeq map[string]int

	formatGlobals map[formatKey]string
	formatOrder   []formatKey

	callTargets []string
}

// NewTextBuilder creates an empty module builder.
func NewTextBuilder() *TextBuilder {
	return &TextBuilder{
		declared:      map[string]bool{},
		funcs:         map[string]*function{},
		labelSeq:      map[string]int{},
		formatGlobals: map[formatKey]string{},
	}
}

func (t *TextBuilder) DeclareConstGlobal(name string, value int64) {
	t.globalLines = append(t.globalLines, fmt.Sprintf("@%s = constant i64 %d", name, value))
}

func (t *TextBuilder) DeclareVarGlobal(name string) {
	t.globalLines = append(t.globalLines, fmt.Sprintf("@%s = global i64 0", name))
}

func (t *TextBuilder) DeclareFunction(name string) {
	t.declared[name] = true
}

func (t *TextBuilder) BeginFunction(name string) {
	f := &function{name: name, labels: map[string]bool{}}
	t.funcs[name] = f
	t.funcOrder = append(t.funcOrder, name)
	t.current = f
	t.declared[name] = true
	t.EmitBlock("entry")
}

func (t *TextBuilder) EndFunction() {
	if t.current == nil {
		return
	}
	if !t.current.terminated {
		t.Emit("ret void")
	}
	t.current = nil
}

func (t *TextBuilder) AllocLocal(name string) string {
	// The ".addr" suffix keeps locals apart from the %tN temps and the
	// block labels, since PL/0 identifiers are purely alphanumeric.
	reg := "%" + name + ".addr"
	t.Emit("%s = alloca i64", reg)
	t.Emit("store i64 0, i64* %s", reg)
	return reg
}

func (t *TextBuilder) FreshTemp() string {
	t.current.tempCounter++
	return fmt.Sprintf("%%t%d", t.current.tempCounter)
}

func (t *TextBuilder) FreshLabel(parent, suffix string) string {
	base := fmt.Sprintf("%s.%s", parent, suffix)
	n := t.labelSeq[base]
	t.labelSeq[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s.%d", base, n+1)
}

func (t *TextBuilder) EmitBlock(label string) {
	f := t.current
	if len(f.lines) > 0 && !f.terminated {
		// Fell through from a prior block without an explicit
		// terminator: make the control flow explicit.
		f.lines = append(f.lines, fmt.Sprintf("  br label %%%s", label))
	}
	f.lines = append(f.lines, label+":")
	f.labels[label] = true
	f.terminated = false
}

func (t *TextBuilder) Emit(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	t.current.lines = append(t.current.lines, "  "+line)

	if strings.HasPrefix(line, "br ") || strings.HasPrefix(line, "ret ") {
		t.current.terminated = true
	}
	if strings.HasPrefix(line, "br label %") {
		target := strings.TrimPrefix(line, "br label %")
		t.current.branchTargets = append(t.current.branchTargets, target)
	}
	if strings.HasPrefix(line, "br i1 ") {
		// "br i1 %cond, label %a, label %b"
		parts := strings.Split(line, "label %")
		for _, p := range parts[1:] {
			target := strings.TrimSuffix(strings.TrimSpace(p), ",")
			t.current.branchTargets = append(t.current.branchTargets, target)
		}
	}
	if strings.Contains(line, "call void @") {
		name := line[strings.Index(line, "call void @")+len("call void @"):]
		if idx := strings.IndexByte(name, '('); idx >= 0 {
			name = name[:idx]
		}
		t.callTargets = append(t.callTargets, name)
	}
}

func (t *TextBuilder) FormatGlobal(count int, newline bool) string {
	key := formatKey{count: count, newline: newline}
	if name, ok := t.formatGlobals[key]; ok {
		return t.formatRef(name, count, newline)
	}

	name := fmt.Sprintf(".fmt.%d", len(t.formatGlobals))
	if newline {
		name = fmt.Sprintf(".fmt.nl.%d", len(t.formatGlobals))
	}
	t.formatGlobals[key] = name
	t.formatOrder = append(t.formatOrder, key)
	return t.formatRef(name, count, newline)
}

func (t *TextBuilder) formatRef(name string, count int, newline bool) string {
	size := formatStringLen(count, newline)
	return fmt.Sprintf("getelementptr inbounds ([%d x i8], [%d x i8]* @%s, i64 0, i64 0)", size, size, name)
}

func formatSpelling(count int, newline bool) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = "%i"
	}
	s := strings.Join(parts, " ")
	if newline {
		s += "\\0A"
	}
	return s + "\\00"
}

// formatStringLen returns the byte length of the escaped format
// string above - each "%i" is 2 chars, each separating space is 1,
// "\0A" and "\00" are each one byte once unescaped.
func formatStringLen(count int, newline bool) int {
	n := count*2 + (count - 1) // "%i" * count, plus count-1 spaces
	if newline {
		n++ // newline byte
	}
	n++ // trailing NUL
	return n
}

// String renders the accumulated module as LLVM IR text.
func (t *TextBuilder) String() string {
	var sb strings.Builder

	sb.WriteString("; generated by pl0c\n\n")

	for _, key := range t.formatOrder {
		name := t.formatGlobals[key]
		size := formatStringLen(key.count, key.newline)
		fmt.Fprintf(&sb, "@%s = private unnamed_addr constant [%d x i8] c\"%s\"\n", name, size, formatSpelling(key.count, key.newline))
	}
	if len(t.formatOrder) > 0 {
		sb.WriteString("\n")
	}

	for _, line := range t.globalLines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString("declare i32 @printf(i8*, ...)\n")
	sb.WriteString("declare i32 @scanf(i8*, ...)\n\n")

	for _, name := range t.funcOrder {
		f := t.funcs[name]
		fmt.Fprintf(&sb, "define void @%s() {\n", f.name)
		for _, line := range f.lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("}\n\n")
	}

	return sb.String()
}

// Verify implements the structural self-check in place of real LLVM
// IR verification: it confirms every branch target has a matching
// block, every call target was declared, and every function closed.
func (t *TextBuilder) Verify() error {
	for _, name := range t.funcOrder {
		f := t.funcs[name]
		for _, target := range f.branchTargets {
			if !f.labels[target] {
				return fmt.Errorf("ir: function %s branches to undefined label %%%s", f.name, target)
			}
		}
		if !f.terminated {
			return fmt.Errorf("ir: function %s has no terminating instruction", f.name)
		}
	}
	for _, target := range t.callTargets {
		if !t.declared[target] {
			return fmt.Errorf("ir: call to undeclared function @%s", target)
		}
	}
	return nil
}
