// Package expr implements the shunting-yard expression compiler
// (spec.md §4.2) and the postfix stack evaluator (spec.md §4.3) used
// to turn a PID's arithmetic expression string into a raw numeric
// result over a 4-byte input window.
package expr

// Domain is the numeric domain an expression's literals and result
// are evaluated in. All literals within one expression share exactly
// one domain; mixing is an invariant violation (spec.md §3).
type Domain int

const (
	Int Domain = iota
	Float
)

// Op is an arithmetic postfix operator.
type Op int

const (
	Add Op = iota
	Sub
	Mul
	Div
)

// kind tags a compiled postfix token.
type kind int

const (
	kindVar kind = iota
	kindLitInt
	kindLitFloat
	kindOp
)

// Token is one element of a compiled postfix sequence: Var(A|B|C|D),
// LitInt, LitFloat, or Op(ADD|SUB|MUL|DIV).
type Token struct {
	kind kind
	v    int     // 0..3, valid when kind == kindVar (fetches data[v])
	i    int32   // valid when kind == kindLitInt
	f    float32 // valid when kind == kindLitFloat
	op   Op      // valid when kind == kindOp
}

func varToken(idx int) Token       { return Token{kind: kindVar, v: idx} }
func litIntToken(i int32) Token    { return Token{kind: kindLitInt, i: i} }
func litFloatToken(f float32) Token { return Token{kind: kindLitFloat, f: f} }
func opToken(op Op) Token          { return Token{kind: kindOp, op: op} }

// Expression is a compiled, finite, non-restartable postfix token
// sequence plus the numeric domain it was compiled for.
type Expression struct {
	Domain  Domain
	Postfix []Token
}
