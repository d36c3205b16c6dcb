package ast

import (
	"fmt"
	"strings"
)

// Dump renders a Program as an indented tree, the form the driver's
// -v flag prints to stdout.
func Dump(p *Program) string {
	var sb strings.Builder
	sb.WriteString("Program\n")
	dumpSubprogram(&sb, p.Main, 1)
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func dumpSubprogram(sb *strings.Builder, s *Subprogram, depth int) {
	for _, c := range s.Consts {
		indent(sb, depth)
		fmt.Fprintf(sb, "Const %s = %d\n", c.Name, c.Value)
	}
	if len(s.Vars) > 0 {
		indent(sb, depth)
		fmt.Fprintf(sb, "Vars %s\n", strings.Join(s.Vars, ", "))
	}
	for _, proc := range s.Procedures {
		indent(sb, depth)
		fmt.Fprintf(sb, "Procedure %s\n", proc.Name)
		dumpSubprogram(sb, proc.Body, depth+1)
	}
	indent(sb, depth)
	sb.WriteString("Body\n")
	dumpStatement(sb, s.Body, depth+1)
}

func dumpStatement(sb *strings.Builder, s Statement, depth int) {
	if s == nil {
		indent(sb, depth)
		sb.WriteString("Empty\n")
		return
	}
	switch st := s.(type) {
	case Assign:
		indent(sb, depth)
		fmt.Fprintf(sb, "Assign %s := %s\n", st.Target, dumpExpr(st.Value))
	case Call:
		indent(sb, depth)
		fmt.Fprintf(sb, "Call %s\n", st.Name)
	case If:
		indent(sb, depth)
		fmt.Fprintf(sb, "If %s\n", dumpCond(st.Cond))
		dumpStatement(sb, st.Then, depth+1)
	case While:
		indent(sb, depth)
		fmt.Fprintf(sb, "While %s\n", dumpCond(st.Cond))
		dumpStatement(sb, st.Body, depth+1)
	case Compound:
		indent(sb, depth)
		sb.WriteString("Compound\n")
		for _, inner := range st.Statements {
			dumpStatement(sb, inner, depth+1)
		}
	case Read:
		indent(sb, depth)
		fmt.Fprintf(sb, "Read %s\n", strings.Join(st.Targets, ", "))
	case Write:
		indent(sb, depth)
		parts := make([]string, len(st.Values))
		for i, v := range st.Values {
			parts[i] = dumpExpr(v)
		}
		fmt.Fprintf(sb, "Write %s\n", strings.Join(parts, ", "))
	default:
		indent(sb, depth)
		fmt.Fprintf(sb, "<unknown statement %T>\n", s)
	}
}

func dumpExpr(e Expression) string {
	switch ex := e.(type) {
	case Number:
		return fmt.Sprintf("%d", ex.Value)
	case Ident:
		return ex.Name
	case Binary:
		return fmt.Sprintf("(%s %s %s)", dumpExpr(ex.Left), ex.Op, dumpExpr(ex.Right))
	default:
		return fmt.Sprintf("<unknown expr %T>", e)
	}
}

func dumpCond(c Condition) string {
	switch cd := c.(type) {
	case Odd:
		return fmt.Sprintf("odd %s", dumpExpr(cd.Value))
	case Compare:
		return fmt.Sprintf("(%s %s %s)", dumpExpr(cd.Left), cd.Op, dumpExpr(cd.Right))
	default:
		return fmt.Sprintf("<unknown condition %T>", c)
	}
}
