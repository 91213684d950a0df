package expr

// Boolean condition nodes. Conditions are expressions, so they nest freely
// and can appear anywhere a boolean-valued expression is accepted.

// CompareOp is a binary comparison operator.
type CompareOp string

// Comparison operators.
const (
	OpEquals              CompareOp = "="
	OpNotEquals           CompareOp = "!="
	OpLike                CompareOp = "LIKE"
	OpILike               CompareOp = "ILIKE"
	OpGreaterThan         CompareOp = ">"
	OpLessThan            CompareOp = "<"
	OpGreaterThanOrEquals CompareOp = ">="
	OpLessThanOrEquals    CompareOp = "<="
	OpArrayContains       CompareOp = "@>"
	OpArrayContainedBy    CompareOp = "<@"
	OpArrayOverlap        CompareOp = "&&"
)

// LogicalOp joins two conditions.
type LogicalOp string

// Logical operators.
const (
	And LogicalOp = "AND"
	Or  LogicalOp = "OR"
)

// CompareExpr renders left OP right.
type CompareExpr struct {
	Op    CompareOp
	Left  Expr
	Right Expr
}

func (c CompareExpr) SQL() string { return c.Left.SQL() + " " + string(c.Op) + " " + c.Right.SQL() }
func (CompareExpr) isExpr() {}

// BetweenExpr renders value BETWEEN start AND end.
type BetweenExpr struct {
	Value Expr
	Start Expr
	End   Expr
}

func (b BetweenExpr) SQL() string {
	return b.Value.SQL() + " BETWEEN " + b.Start.SQL() + " AND " + b.End.SQL()
}

func (BetweenExpr) isExpr() {}

// NullCheck renders expr IS NULL, or expr IS NOT NULL when Not is set.
type NullCheck struct {
	Expr Expr
	Not  bool
}

func (n NullCheck) SQL() string {
	if n.Not {
		return n.Expr.SQL() + " IS NOT NULL"
	}
	return n.Expr.SQL() + " IS NULL"
}

func (NullCheck) isExpr() {}

// LogicalExpr renders left AND right or left OR right. Operands are never
// parenthesized implicitly; wrap them in GroupedExpr to force a shape.
type LogicalExpr struct {
	Op    LogicalOp
	Left  Expr
	Right Expr
}

func (l LogicalExpr) SQL() string { return l.Left.SQL() + " " + string(l.Op) + " " + l.Right.SQL() }
func (LogicalExpr) isExpr() {}

// NotExpr renders NOT expr.
type NotExpr struct {
	Expr Expr
}

func (n NotExpr) SQL() string { return "NOT " + n.Expr.SQL() }
func (NotExpr) isExpr() {}

// CollateExpr renders expr COLLATE "name".
type CollateExpr struct {
	Expr      Expr
	Collation string
}

// CollationTurkishICU is the ICU collation for Turkish text.
const CollationTurkishICU = "tr-TR-x-icu"

func (c CollateExpr) SQL() string { return c.Expr.SQL() + ` COLLATE "` + c.Collation + `"` }
func (CollateExpr) isExpr() {}

// GroupedExpr renders (expr).
type GroupedExpr struct {
	Expr Expr
}

func (g GroupedExpr) SQL() string { return "(" + g.Expr.SQL() + ")" }
func (GroupedExpr) isExpr() {}

// JoinConditions combines conds left to right with op, skipping empty
// entries. It returns Empty when nothing remains.
func JoinConditions(op LogicalOp, conds ...Expr) Expr {
	var out Expr
	for _, c := range conds {
		if IsEmpty(c) {
			continue
		}
		if out == nil {
			out = c
			continue
		}
		out = LogicalExpr{Op: op, Left: out, Right: c}
	}
	if out == nil {
		return Empty{}
	}
	return out
}
