// native_function.go — NativeFunctionCall dispatch (§3, §4.2): arithmetic,
// comparison, and list-set operators over Evaluation Stack values.
//
// Grounded on vm.go's binNum (the "if bothInt, do integer math; otherwise
// promote both operands to float64" numeric helper) — generalized here from
// the teacher's two numeric kinds (VTInt/VTNum) to ink's Int/Float pair, and
// extended with string concatenation/comparison and ListValue set operators
// the teacher's numeric helper doesn't need.
package ink

import (
	"fmt"
	"math"
	"strings"
)

// EvaluateNativeFunctionCall pops nothing itself — callers (story_step.go)
// supply the already-popped operands in stack order (args[0] is the
// leftmost/earliest-pushed operand) and push the single *Value result.
func EvaluateNativeFunctionCall(call *NativeFunctionCall, args []*Value, defs ListDefinitions) (*Value, error) {
	if len(args) != call.NumberOfParameters {
		return nil, fmt.Errorf("native function %q expects %d argument(s), got %d", call.Name, call.NumberOfParameters, len(args))
	}

	switch call.NumberOfParameters {
	case 1:
		return evalUnary(call.Name, args[0], defs)
	case 2:
		return evalBinary(call.Name, args[0], args[1], defs)
	default:
		return nil, fmt.Errorf("native function %q has unsupported arity %d", call.Name, call.NumberOfParameters)
	}
}

func evalUnary(name string, a *Value, defs ListDefinitions) (*Value, error) {
	switch name {
	case "!":
		_, truthy := truthiness(a)
		return NewBoolValue(!truthy), nil
	case "unary -", "-":
		if n, ok := a.Int(); ok {
			return NewIntValue(-n), nil
		}
		if f, ok := a.Float(); ok {
			return NewFloatValue(-f), nil
		}
		return nil, fmt.Errorf("unary - requires a numeric operand")
	case "FLOOR":
		f, err := asFloat(a)
		if err != nil {
			return nil, err
		}
		return NewIntValue(int(math.Floor(f))), nil
	case "CEILING":
		f, err := asFloat(a)
		if err != nil {
			return nil, err
		}
		return NewIntValue(int(math.Ceil(f))), nil
	case "INT":
		if n, ok := a.Int(); ok {
			return NewIntValue(n), nil
		}
		f, err := asFloat(a)
		if err != nil {
			return nil, err
		}
		return NewIntValue(int(f)), nil
	case "FLOAT":
		f, err := asFloat(a)
		if err != nil {
			return nil, err
		}
		return NewFloatValue(f), nil
	case "LIST_MIN":
		l, ok := a.List()
		if !ok {
			return nil, fmt.Errorf("LIST_MIN requires a list operand")
		}
		return NewListValue(l.MinItem()), nil
	case "LIST_MAX":
		l, ok := a.List()
		if !ok {
			return nil, fmt.Errorf("LIST_MAX requires a list operand")
		}
		return NewListValue(l.MaxItem()), nil
	case "LIST_ALL":
		l, ok := a.List()
		if !ok {
			return nil, fmt.Errorf("LIST_ALL requires a list operand")
		}
		return NewListValue(l.AllPossibleItems(defs)), nil
	case "LIST_COUNT":
		l, ok := a.List()
		if !ok {
			return nil, fmt.Errorf("LIST_COUNT requires a list operand")
		}
		return NewIntValue(len(l.Items)), nil
	case "LIST_INVERT":
		l, ok := a.List()
		if !ok {
			return nil, fmt.Errorf("LIST_INVERT requires a list operand")
		}
		all := l.AllPossibleItems(defs)
		return NewListValue(all.Without(l)), nil
	default:
		return nil, fmt.Errorf("unknown unary native function %q", name)
	}
}

func evalBinary(name string, a, b *Value, defs ListDefinitions) (*Value, error) {
	// List set operators take priority when both sides are lists.
	if la, ok := a.List(); ok {
		if lb, ok2 := b.List(); ok2 {
			switch name {
			case "+", "||":
				return NewListValue(la.Union(lb)), nil
			case "^":
				return NewListValue(la.Intersect(lb)), nil
			case "-":
				return NewListValue(la.Without(lb)), nil
			case "has", "?", "has ?":
				return NewBoolValue(la.Has(lb)), nil
			case "hasnt", "!?":
				return NewBoolValue(la.HasNot(lb)), nil
			case "==":
				return boolAsInt(la.Equals(lb)), nil
			case "!=":
				return boolAsInt(!la.Equals(lb)), nil
			}
		}
	}

	// String operators.
	if sa, ok := a.Str(); ok {
		if sb, ok2 := b.Str(); ok2 {
			switch name {
			case "+":
				return NewStringValue(sa + sb), nil
			case "==":
				return boolAsInt(sa == sb), nil
			case "!=":
				return boolAsInt(sa != sb), nil
			case "<":
				return boolAsInt(sa < sb), nil
			case "<=":
				return boolAsInt(sa <= sb), nil
			case ">":
				return boolAsInt(sa > sb), nil
			case ">=":
				return boolAsInt(sa >= sb), nil
			case "?", "has":
				return NewBoolValue(len(sb) > 0 && strings.Contains(sa, sb)), nil
			}
		}
	}

	// Boolean operators.
	if name == "&&" || name == "and" {
		_, at := truthiness(a)
		_, bt := truthiness(b)
		return NewBoolValue(at && bt), nil
	}
	if name == "||" {
		if _, ok := a.List(); !ok {
			_, at := truthiness(a)
			_, bt := truthiness(b)
			return NewBoolValue(at || bt), nil
		}
	}

	// Numeric operators, mirroring vm.go's binNum: integer math when both
	// operands are Int, float math (with promotion) otherwise.
	an, aIsInt := a.Int()
	bn, bIsInt := b.Int()
	bothInt := aIsInt && bIsInt

	af, err := asFloat(a)
	if err != nil {
		return nil, fmt.Errorf("native function %q: left operand is not numeric", name)
	}
	bf, err := asFloat(b)
	if err != nil {
		return nil, fmt.Errorf("native function %q: right operand is not numeric", name)
	}

	switch name {
	case "+":
		if bothInt {
			return NewIntValue(an + bn), nil
		}
		return NewFloatValue(af + bf), nil
	case "-":
		if bothInt {
			return NewIntValue(an - bn), nil
		}
		return NewFloatValue(af - bf), nil
	case "*":
		if bothInt {
			return NewIntValue(an * bn), nil
		}
		return NewFloatValue(af * bf), nil
	case "/":
		if bf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		if bothInt {
			return NewIntValue(an / bn), nil
		}
		return NewFloatValue(af / bf), nil
	case "%", "mod":
		if bf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		if bothInt {
			return NewIntValue(an % bn), nil
		}
		return NewFloatValue(math.Mod(af, bf)), nil
	case "MIN":
		if bothInt {
			if an < bn {
				return NewIntValue(an), nil
			}
			return NewIntValue(bn), nil
		}
		return NewFloatValue(math.Min(af, bf)), nil
	case "MAX":
		if bothInt {
			if an > bn {
				return NewIntValue(an), nil
			}
			return NewIntValue(bn), nil
		}
		return NewFloatValue(math.Max(af, bf)), nil
	case "POW":
		return NewFloatValue(math.Pow(af, bf)), nil
	case "==":
		if bothInt {
			return boolAsInt(an == bn), nil
		}
		return boolAsInt(af == bf), nil
	case "!=":
		if bothInt {
			return boolAsInt(an != bn), nil
		}
		return boolAsInt(af != bf), nil
	case "<":
		if bothInt {
			return boolAsInt(an < bn), nil
		}
		return boolAsInt(af < bf), nil
	case "<=":
		if bothInt {
			return boolAsInt(an <= bn), nil
		}
		return boolAsInt(af <= bf), nil
	case ">":
		if bothInt {
			return boolAsInt(an > bn), nil
		}
		return boolAsInt(af > bf), nil
	case ">=":
		if bothInt {
			return boolAsInt(an >= bn), nil
		}
		return boolAsInt(af >= bf), nil
	default:
		return nil, fmt.Errorf("unknown native function %q", name)
	}
}

// asFloat promotes Int or Float values to float64; any other kind is an
// error (callers already handled String/List/Bool combinations above).
func asFloat(v *Value) (float64, error) {
	if n, ok := v.Int(); ok {
		return float64(n), nil
	}
	if f, ok := v.Float(); ok {
		return f, nil
	}
	return 0, fmt.Errorf("value of kind %s is not numeric", v.Kind)
}

// boolAsInt renders a comparison result the way ink does: 0/1, not a Bool
// Value — Bool is reserved for literal true/false (§4.2).
func boolAsInt(b bool) *Value {
	if b {
		return NewIntValue(1)
	}
	return NewIntValue(0)
}

// truthiness mirrors ink's "everything non-zero/non-empty is true" rule for
// the values that can appear in a boolean context.
func truthiness(v *Value) (bool, bool) {
	if b, ok := v.Bool(); ok {
		return true, b
	}
	if n, ok := v.Int(); ok {
		return true, n != 0
	}
	if f, ok := v.Float(); ok {
		return true, f != 0
	}
	if s, ok := v.Str(); ok {
		return true, s != ""
	}
	if l, ok := v.List(); ok {
		return true, len(l.Items) > 0
	}
	return false, false
}
