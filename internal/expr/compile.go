package expr

import "fmt"

func precedence(k lexKind) int {
	switch k {
	case lexMul, lexDiv:
		return 2
	case lexAdd, lexSub:
		return 1
	default:
		return 0
	}
}

func isOperator(k lexKind) bool {
	switch k {
	case lexAdd, lexSub, lexMul, lexDiv:
		return true
	default:
		return false
	}
}

func toOp(k lexKind) Op {
	switch k {
	case lexAdd:
		return Add
	case lexSub:
		return Sub
	case lexMul:
		return Mul
	case lexDiv:
		return Div
	default:
		panic("expr: toOp called on non-operator token")
	}
}

// Compile lexes src and runs Dijkstra's shunting-yard to produce a
// postfix Expression for the given numeric domain (spec.md §4.2).
// Literals are parsed according to domain: integer domain parses
// base-10 signed 32-bit integers, float domain parses decimal floats.
func Compile(src string, domain Domain) (*Expression, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	var output []Token
	var opStack []lexTok

	for _, t := range toks {
		switch {
		case t.kind == lexVar:
			output = append(output, varToken(t.v))

		case t.kind == lexNumber:
			if domain == Int {
				v, err := parseIntLiteral(t.text)
				if err != nil {
					return nil, err
				}
				output = append(output, litIntToken(v))
			} else {
				v, err := parseFloatLiteral(t.text)
				if err != nil {
					return nil, err
				}
				output = append(output, litFloatToken(v))
			}

		case t.kind == lexLParen:
			opStack = append(opStack, t)

		case t.kind == lexRParen:
			found := false
			for len(opStack) > 0 {
				top := opStack[len(opStack)-1]
				opStack = opStack[:len(opStack)-1]
				if top.kind == lexLParen {
					found = true
					break
				}
				output = append(output, opToken(toOp(top.kind)))
			}
			if !found {
				return nil, fmt.Errorf("expr: unmatched ')' in %q", src)
			}

		case isOperator(t.kind):
			for len(opStack) > 0 {
				top := opStack[len(opStack)-1]
				if top.kind == lexLParen {
					break
				}
				if precedence(top.kind) < precedence(t.kind) {
					break
				}
				output = append(output, opToken(toOp(top.kind)))
				opStack = opStack[:len(opStack)-1]
			}
			opStack = append(opStack, t)

		default:
			return nil, fmt.Errorf("expr: unexpected token in %q", src)
		}
	}

	for len(opStack) > 0 {
		top := opStack[len(opStack)-1]
		opStack = opStack[:len(opStack)-1]
		if top.kind == lexLParen {
			return nil, fmt.Errorf("expr: unmatched '(' in %q", src)
		}
		output = append(output, opToken(toOp(top.kind)))
	}

	return &Expression{Domain: domain, Postfix: output}, nil
}
