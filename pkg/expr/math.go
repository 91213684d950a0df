package expr

import "github.com/pthm/pgquery/pkg/args"

// BinaryOp is a two-operand math operator.
type BinaryOp string

// Binary operators.
const (
	OpAdd        BinaryOp = "+"
	OpSubtract   BinaryOp = "-"
	OpMultiply   BinaryOp = "*"
	OpDivide     BinaryOp = "/"
	OpModulo     BinaryOp = "%"
	OpPow        BinaryOp = "^"
	OpBitAnd     BinaryOp = "&"
	OpBitOr      BinaryOp = "|"
	OpBitXor     BinaryOp = "#"
	OpShiftLeft  BinaryOp = "<<"
	OpShiftRight BinaryOp = ">>"
)

// UnaryOp is a one-operand math operator.
type UnaryOp string

// Unary operators.
const (
	OpSqrt      UnaryOp = "|/"
	OpCubeRoot  UnaryOp = "||/"
	OpNeg       UnaryOp = "-"
	OpUnaryPlus UnaryOp = "+"
	OpBitNot    UnaryOp = "~"
)

// BinaryExpr renders (left OP right). The whole operation is always
// parenthesized so nesting never changes precedence.
type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (b BinaryExpr) SQL() string {
	return "(" + b.Left.SQL() + " " + string(b.Op) + " " + b.Right.SQL() + ")"
}

func (BinaryExpr) isExpr() {}

// UnaryExpr renders (OP value).
type UnaryExpr struct {
	Op    UnaryOp
	Value Expr
}

func (u UnaryExpr) SQL() string { return "(" + string(u.Op) + " " + u.Value.SQL() + ")" }
func (UnaryExpr) isExpr() {}

// Math is an immutable arithmetic builder.
//
//	expr.M(users.Age).Add(1).Multiply(2) // ((users.age + $1) * $2)
type Math struct {
	lower LowerFunc
}

// M starts a math expression from v.
func M(v any) Math {
	l := Arg(v)
	return Math{lower: l.Lower}
}

// Lower implements Lowerer.
func (m Math) Lower(h *args.Holder) Expr { return m.lower(h) }

func (m Math) binary(op BinaryOp, other any) Math {
	r := Arg(other)
	return Math{lower: func(h *args.Holder) Expr {
		left := m.Lower(h)
		right := r.Lower(h)
		return BinaryExpr{Op: op, Left: left, Right: right}
	}}
}

func (m Math) unary(op UnaryOp) Math {
	return Math{lower: func(h *args.Holder) Expr {
		return UnaryExpr{Op: op, Value: m.Lower(h)}
	}}
}

// Add builds (m + v).
func (m Math) Add(v any) Math { return m.binary(OpAdd, v) }

// Subtract builds (m - v).
func (m Math) Subtract(v any) Math { return m.binary(OpSubtract, v) }

// Multiply builds (m * v).
func (m Math) Multiply(v any) Math { return m.binary(OpMultiply, v) }

// Divide builds (m / v).
func (m Math) Divide(v any) Math { return m.binary(OpDivide, v) }

// Modulo builds (m % v).
func (m Math) Modulo(v any) Math { return m.binary(OpModulo, v) }

// Pow builds (m ^ v).
func (m Math) Pow(v any) Math { return m.binary(OpPow, v) }

// BitAnd builds (m & v).
func (m Math) BitAnd(v any) Math { return m.binary(OpBitAnd, v) }

// BitOr builds (m | v).
func (m Math) BitOr(v any) Math { return m.binary(OpBitOr, v) }

// BitXor builds (m # v).
func (m Math) BitXor(v any) Math { return m.binary(OpBitXor, v) }

// ShiftLeft builds (m << v).
func (m Math) ShiftLeft(v any) Math { return m.binary(OpShiftLeft, v) }

// ShiftRight builds (m >> v).
func (m Math) ShiftRight(v any) Math { return m.binary(OpShiftRight, v) }

// Sqrt builds (|/ m).
func (m Math) Sqrt() Math { return m.unary(OpSqrt) }

// CubeRoot builds (||/ m).
func (m Math) CubeRoot() Math { return m.unary(OpCubeRoot) }

// Neg builds (- m).
func (m Math) Neg() Math { return m.unary(OpNeg) }

// UnaryPlus builds (+ m).
func (m Math) UnaryPlus() Math { return m.unary(OpUnaryPlus) }

// BitNot builds (~ m).
func (m Math) BitNot() Math { return m.unary(OpBitNot) }

// As aliases the expression.
func (m Math) As(name string) Lowerer { return As(m, name) }

// Math starts a math expression from the column.
func (c ColumnRef) Math() Math { return M(c) }
