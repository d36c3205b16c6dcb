package ir

import (
	"fmt"

	"github.com/skx/pl0c/internal/ast"
)

// localScope holds the const/var declarations owned by the procedure
// currently being generated. It is never chained to an enclosing
// procedure's scope: resolution always falls straight from here to
// the module's globals, per the flat symbol space described in the
// data model.
type localScope struct {
	consts map[string]int64
	locals map[string]string // name -> alloca pointer operand
}

func newLocalScope() *localScope {
	return &localScope{consts: map[string]int64{}, locals: map[string]string{}}
}

// Generator walks a *ast.Program and drives a Builder to produce an
// LLVM IR module.
type Generator struct {
	b Builder

	globalConsts map[string]int64
	globalVars   map[string]bool
	declaredFns  map[string]bool

	currentFunc string
}

// NewGenerator returns a Generator that drives b.
func NewGenerator(b Builder) *Generator {
	return &Generator{
		b:            b,
		globalConsts: map[string]int64{},
		globalVars:   map[string]bool{},
		declaredFns:  map[string]bool{},
	}
}

// Generate lowers prog to an LLVM IR module and renders it as text.
func Generate(prog *ast.Program) (string, error) {
	b := NewTextBuilder()
	g := NewGenerator(b)
	if err := g.run(prog); err != nil {
		return "", err
	}
	if err := b.Verify(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (g *Generator) run(prog *ast.Program) error {
	for _, c := range prog.Main.Consts {
		g.globalConsts[c.Name] = c.Value
		g.b.DeclareConstGlobal(c.Name, c.Value)
	}
	for _, v := range prog.Main.Vars {
		g.globalVars[v] = true
		g.b.DeclareVarGlobal(v)
	}

	var procs []*ast.Procedure
	collectProcedures(prog.Main, &procs)
	g.declaredFns["main"] = true
	for _, p := range procs {
		g.declaredFns[p.Name] = true
		g.b.DeclareFunction(p.Name)
	}

	g.currentFunc = "main"
	g.b.BeginFunction("main")
	if err := g.genStatement(prog.Main.Body, nil); err != nil {
		return err
	}
	g.b.EndFunction()

	for _, p := range procs {
		g.currentFunc = p.Name
		g.b.BeginFunction(p.Name)
		local := newLocalScope()
		for _, c := range p.Body.Consts {
			local.consts[c.Name] = c.Value
		}
		for _, v := range p.Body.Vars {
			local.locals[v] = g.b.AllocLocal(v)
		}
		if err := g.genStatement(p.Body.Body, local); err != nil {
			return err
		}
		g.b.EndFunction()
	}

	return nil
}

// collectProcedures flattens every procedure in the tree, regardless
// of nesting depth, into a single list: all procedures become
// top-level LLVM functions.
func collectProcedures(s *ast.Subprogram, out *[]*ast.Procedure) {
	for i := range s.Procedures {
		p := &s.Procedures[i]
		*out = append(*out, p)
		collectProcedures(p.Body, out)
	}
}

// resolution describes where an identifier was found.
type resolution struct {
	isConst bool
	value   int64  // valid when isConst
	ptr     string // valid when !isConst: "%x" or "@x"
}

func (g *Generator) resolve(name string, local *localScope) (resolution, error) {
	if local != nil {
		if v, ok := local.consts[name]; ok {
			return resolution{isConst: true, value: v}, nil
		}
		if ptr, ok := local.locals[name]; ok {
			return resolution{ptr: ptr}, nil
		}
	}
	if v, ok := g.globalConsts[name]; ok {
		return resolution{isConst: true, value: v}, nil
	}
	if g.globalVars[name] {
		return resolution{ptr: "@" + name}, nil
	}
	return resolution{}, &VariableUndefinedError{Name: name}
}

func (g *Generator) loadVar(name string, local *localScope) (string, error) {
	r, err := g.resolve(name, local)
	if err != nil {
		return "", err
	}
	if r.isConst {
		return fmt.Sprintf("%d", r.value), nil
	}
	t := g.b.FreshTemp()
	g.b.Emit("%s = load i64, i64* %s", t, r.ptr)
	return t, nil
}

func (g *Generator) resolvePtr(name string, local *localScope) (string, error) {
	r, err := g.resolve(name, local)
	if err != nil {
		return "", err
	}
	if r.isConst {
		return "", &VariableUndefinedError{Name: name}
	}
	return r.ptr, nil
}

func (g *Generator) genStatement(s ast.Statement, local *localScope) error {
	switch st := s.(type) {
	case nil:
		return nil
	case ast.Assign:
		val, err := g.genExpr(st.Value, local)
		if err != nil {
			return err
		}
		ptr, err := g.resolvePtr(st.Target, local)
		if err != nil {
			return err
		}
		g.b.Emit("store i64 %s, i64* %s", val, ptr)
		return nil
	case ast.Call:
		if !g.declaredFns[st.Name] {
			return &FunctionUndefinedError{Name: st.Name}
		}
		g.b.Emit("call void @%s()", st.Name)
		return nil
	case ast.If:
		cond, err := g.genCondition(st.Cond, local)
		if err != nil {
			return err
		}
		thenLabel := g.b.FreshLabel(g.currentFunc, "then")
		endLabel := g.b.FreshLabel(g.currentFunc, "endif")
		g.b.Emit("br i1 %s, label %%%s, label %%%s", cond, thenLabel, endLabel)
		g.b.EmitBlock(thenLabel)
		if err := g.genStatement(st.Then, local); err != nil {
			return err
		}
		g.b.EmitBlock(endLabel)
		return nil
	case ast.While:
		condLabel := g.b.FreshLabel(g.currentFunc, "whilecondition")
		thenLabel := g.b.FreshLabel(g.currentFunc, "whilethen")
		endLabel := g.b.FreshLabel(g.currentFunc, "endwhile")
		g.b.EmitBlock(condLabel)
		cond, err := g.genCondition(st.Cond, local)
		if err != nil {
			return err
		}
		g.b.Emit("br i1 %s, label %%%s, label %%%s", cond, thenLabel, endLabel)
		g.b.EmitBlock(thenLabel)
		if err := g.genStatement(st.Body, local); err != nil {
			return err
		}
		g.b.Emit("br label %%%s", condLabel)
		g.b.EmitBlock(endLabel)
		return nil
	case ast.Compound:
		for _, inner := range st.Statements {
			if err := g.genStatement(inner, local); err != nil {
				return err
			}
		}
		return nil
	case ast.Read:
		return g.genRead(st, local)
	case ast.Write:
		return g.genWrite(st, local)
	default:
		return fmt.Errorf("ir: unhandled statement %T", s)
	}
}

func (g *Generator) genRead(st ast.Read, local *localScope) error {
	ptrs := make([]string, len(st.Targets))
	for i, name := range st.Targets {
		ptr, err := g.resolvePtr(name, local)
		if err != nil {
			return err
		}
		ptrs[i] = ptr
	}
	fmtRef := g.b.FormatGlobal(len(ptrs), false)
	args := fmt.Sprintf("i8* %s", fmtRef)
	for _, ptr := range ptrs {
		args += fmt.Sprintf(", i64* %s", ptr)
	}
	g.b.Emit("call i32 (i8*, ...) @scanf(%s)", args)
	return nil
}

func (g *Generator) genWrite(st ast.Write, local *localScope) error {
	vals := make([]string, len(st.Values))
	for i, e := range st.Values {
		v, err := g.genExpr(e, local)
		if err != nil {
			return err
		}
		vals[i] = v
	}
	fmtRef := g.b.FormatGlobal(len(vals), true)
	args := fmt.Sprintf("i8* %s", fmtRef)
	for _, v := range vals {
		args += fmt.Sprintf(", i64 %s", v)
	}
	g.b.Emit("call i32 (i8*, ...) @printf(%s)", args)
	return nil
}

func (g *Generator) genExpr(e ast.Expression, local *localScope) (string, error) {
	switch ex := e.(type) {
	case ast.Number:
		return fmt.Sprintf("%d", ex.Value), nil
	case ast.Ident:
		return g.loadVar(ex.Name, local)
	case ast.Binary:
		l, err := g.genExpr(ex.Left, local)
		if err != nil {
			return "", err
		}
		r, err := g.genExpr(ex.Right, local)
		if err != nil {
			return "", err
		}
		op, err := binaryOp(ex.Op)
		if err != nil {
			return "", err
		}
		t := g.b.FreshTemp()
		g.b.Emit("%s = %s i64 %s, %s", t, op, l, r)
		return t, nil
	default:
		return "", fmt.Errorf("ir: unhandled expression %T", e)
	}
}

func (g *Generator) genCondition(c ast.Condition, local *localScope) (string, error) {
	switch cd := c.(type) {
	case ast.Odd:
		v, err := g.genExpr(cd.Value, local)
		if err != nil {
			return "", err
		}
		bit := g.b.FreshTemp()
		g.b.Emit("%s = and i64 %s, 1", bit, v)
		result := g.b.FreshTemp()
		g.b.Emit("%s = icmp ne i64 %s, 0", result, bit)
		return result, nil
	case ast.Compare:
		l, err := g.genExpr(cd.Left, local)
		if err != nil {
			return "", err
		}
		r, err := g.genExpr(cd.Right, local)
		if err != nil {
			return "", err
		}
		op, err := relOp(cd.Op)
		if err != nil {
			return "", err
		}
		result := g.b.FreshTemp()
		g.b.Emit("%s = icmp %s i64 %s, %s", result, op, l, r)
		return result, nil
	default:
		return "", fmt.Errorf("ir: unhandled condition %T", c)
	}
}

func binaryOp(op ast.BinaryOp) (string, error) {
	switch op {
	case ast.Add:
		return "add", nil
	case ast.Sub:
		return "sub", nil
	case ast.Mul:
		return "mul", nil
	case ast.Div:
		return "sdiv", nil
	default:
		return "", fmt.Errorf("ir: unknown binary operator %q", op)
	}
}

func relOp(op ast.RelOp) (string, error) {
	switch op {
	case ast.Eq:
		return "eq", nil
	case ast.Neq:
		return "ne", nil
	case ast.Lt:
		return "slt", nil
	case ast.Lte:
		return "sle", nil
	case ast.Gt:
		return "sgt", nil
	case ast.Gte:
		return "sge", nil
	default:
		return "", fmt.Errorf("ir: unknown relational operator %q", op)
	}
}
