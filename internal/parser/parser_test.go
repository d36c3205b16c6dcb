package parser

import (
	"testing"

	"github.com/skx/pl0c/internal/ast"
	"github.com/skx/pl0c/internal/lexer"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(lexer.Tokenize(src))
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", src, err)
	}
	return prog
}

func TestPrecedence(t *testing.T) {
	prog := parse(t, "var x; begin x := 1+2*3; end.")
	assign := prog.Main.Body.(ast.Compound).Statements[0].(ast.Assign)

	bin, ok := assign.Value.(ast.Binary)
	if !ok {
		t.Fatalf("expected top-level Binary, got %T", assign.Value)
	}
	if bin.Op != ast.Add {
		t.Fatalf("expected top-level '+', got %q", bin.Op)
	}
	if _, ok := bin.Left.(ast.Number); !ok {
		t.Fatalf("expected left operand Number, got %T", bin.Left)
	}
	right, ok := bin.Right.(ast.Binary)
	if !ok || right.Op != ast.Mul {
		t.Fatalf("expected right operand Binary(*), got %+v", bin.Right)
	}
}

func TestLeftAssociativity(t *testing.T) {
	prog := parse(t, "var a,b,c,x; begin x := a-b-c; end.")
	assign := prog.Main.Body.(ast.Compound).Statements[0].(ast.Assign)

	outer, ok := assign.Value.(ast.Binary)
	if !ok || outer.Op != ast.Sub {
		t.Fatalf("expected outer Binary(-), got %+v", assign.Value)
	}
	inner, ok := outer.Left.(ast.Binary)
	if !ok || inner.Op != ast.Sub {
		t.Fatalf("expected left-associative inner Binary(-), got %+v", outer.Left)
	}
	if _, ok := outer.Right.(ast.Ident); !ok {
		t.Fatalf("expected right operand Ident, got %T", outer.Right)
	}
}

func TestParenthesesChangeShape(t *testing.T) {
	left := parse(t, "var a,b,c,x; begin x := (a+b)*c; end.")
	right := parse(t, "var a,b,c,x; begin x := a+b*c; end.")

	leftAssign := left.Main.Body.(ast.Compound).Statements[0].(ast.Assign)
	rightAssign := right.Main.Body.(ast.Compound).Statements[0].(ast.Assign)

	leftBin := leftAssign.Value.(ast.Binary)
	if leftBin.Op != ast.Mul {
		t.Fatalf("(a+b)*c should have top operator '*', got %q", leftBin.Op)
	}
	if _, ok := leftBin.Left.(ast.Binary); !ok {
		t.Fatalf("(a+b)*c should have a Binary left operand, got %T", leftBin.Left)
	}

	rightBin := rightAssign.Value.(ast.Binary)
	if rightBin.Op != ast.Add {
		t.Fatalf("a+b*c should have top operator '+', got %q", rightBin.Op)
	}
	if _, ok := rightBin.Right.(ast.Binary); !ok {
		t.Fatalf("a+b*c should have a Binary right operand, got %T", rightBin.Right)
	}
}

func TestGroupedExpressionAssign(t *testing.T) {
	prog := parse(t, "var a,b,c,d,x; begin x := (a+b)*(c-d); end.")
	assign := prog.Main.Body.(ast.Compound).Statements[0].(ast.Assign)

	top := assign.Value.(ast.Binary)
	if top.Op != ast.Mul {
		t.Fatalf("expected top operator '*', got %q", top.Op)
	}
	left := top.Left.(ast.Binary)
	if left.Op != ast.Add {
		t.Fatalf("expected left operator '+', got %q", left.Op)
	}
	right := top.Right.(ast.Binary)
	if right.Op != ast.Sub {
		t.Fatalf("expected right operator '-', got %q", right.Op)
	}
}

func TestEmptyThenBranchAsBareTopLevelBody(t *testing.T) {
	prog := parse(t, "var a,b; if a=b then ; .")
	ifStmt, ok := prog.Main.Body.(ast.If)
	if !ok {
		t.Fatalf("expected If as the top-level body, got %T", prog.Main.Body)
	}
	if ifStmt.Then != nil {
		t.Fatalf("expected empty then-branch, got %+v", ifStmt.Then)
	}
}

func TestEmptyThenBranch(t *testing.T) {
	prog := parse(t, "var m,n; begin if m<=n then ; end.")
	ifStmt := prog.Main.Body.(ast.Compound).Statements[0].(ast.If)

	cmp, ok := ifStmt.Cond.(ast.Compare)
	if !ok || cmp.Op != ast.Lte {
		t.Fatalf("expected Compare(<=), got %+v", ifStmt.Cond)
	}
	if ifStmt.Then != nil {
		t.Fatalf("expected empty then-branch, got %+v", ifStmt.Then)
	}
}

func TestIfWriteAst(t *testing.T) {
	prog := parse(t, "var a,b; begin if a=b then write(a); end.")
	ifStmt := prog.Main.Body.(ast.Compound).Statements[0].(ast.If)

	cmp := ifStmt.Cond.(ast.Compare)
	if cmp.Op != ast.Eq {
		t.Fatalf("expected Compare(=), got %q", cmp.Op)
	}
	write, ok := ifStmt.Then.(ast.Write)
	if !ok || len(write.Values) != 1 {
		t.Fatalf("expected Write([a]), got %+v", ifStmt.Then)
	}
	if _, ok := write.Values[0].(ast.Ident); !ok {
		t.Fatalf("expected Write argument to be an Ident, got %T", write.Values[0])
	}
}

func TestOddCondition(t *testing.T) {
	prog := parse(t, "var x; begin while odd x do x := x-1; end.")
	while := prog.Main.Body.(ast.Compound).Statements[0].(ast.While)

	odd, ok := while.Cond.(ast.Odd)
	if !ok {
		t.Fatalf("expected Odd condition, got %+v", while.Cond)
	}
	if _, ok := odd.Value.(ast.Ident); !ok {
		t.Fatalf("expected Odd operand to be an Ident, got %T", odd.Value)
	}
}

func TestProcedureAndCall(t *testing.T) {
	src := `
var x;
procedure inc;
begin
  x := x + 1;
end
begin
  call inc;
  write(x);
end.`
	prog := parse(t, src)
	if len(prog.Main.Procedures) != 1 {
		t.Fatalf("expected 1 procedure, got %d", len(prog.Main.Procedures))
	}
	if prog.Main.Procedures[0].Name != "inc" {
		t.Fatalf("expected procedure named inc, got %q", prog.Main.Procedures[0].Name)
	}
	compound := prog.Main.Body.(ast.Compound)
	if _, ok := compound.Statements[0].(ast.Call); !ok {
		t.Fatalf("expected first statement to be a Call, got %T", compound.Statements[0])
	}
}

func TestTrailingSemicolonInCompound(t *testing.T) {
	prog := parse(t, "var x; begin x := 1; x := 2; end.")
	compound := prog.Main.Body.(ast.Compound)
	if len(compound.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %+v", len(compound.Statements), compound.Statements)
	}
}

func TestConstsAndVars(t *testing.T) {
	prog := parse(t, "const max = 100, min = 0; var a, b; begin a := max; b := min; end.")
	if len(prog.Main.Consts) != 2 || prog.Main.Consts[0].Value != 100 {
		t.Fatalf("unexpected consts: %+v", prog.Main.Consts)
	}
	if len(prog.Main.Vars) != 2 {
		t.Fatalf("unexpected vars: %+v", prog.Main.Vars)
	}
}

func TestReadAndWriteLists(t *testing.T) {
	prog := parse(t, "var a,b; begin read(a,b); write(a,b); end.")
	compound := prog.Main.Body.(ast.Compound)

	read := compound.Statements[0].(ast.Read)
	if len(read.Targets) != 2 || read.Targets[0] != "a" || read.Targets[1] != "b" {
		t.Fatalf("unexpected read targets: %+v", read.Targets)
	}

	write := compound.Statements[1].(ast.Write)
	if len(write.Values) != 2 {
		t.Fatalf("unexpected write values: %+v", write.Values)
	}
}

func TestMissingPeriodIsTokenError(t *testing.T) {
	_, err := Parse(lexer.Tokenize("var x; begin x := 1; end"))
	if err == nil {
		t.Fatal("expected an error for a program missing its trailing '.'")
	}
	if _, ok := err.(*TokenError); !ok {
		t.Fatalf("expected *TokenError, got %T", err)
	}
}

func TestTokenErrorMessageFormat(t *testing.T) {
	_, err := Parse(lexer.Tokenize("var x\nbegin x := 1; end."))
	te, ok := err.(*TokenError)
	if !ok {
		t.Fatalf("expected *TokenError, got %T (%v)", err, err)
	}
	want := "Unexpected token 'begin' in line 2, at 1"
	if te.Error() != want {
		t.Errorf("Error() = %q, want %q", te.Error(), want)
	}
}
