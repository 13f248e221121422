package tasks

import (
	"fmt"
	"strconv"
	"strings"
)

// Comparison expressions are three tokens: operand, operator, operand.
// Operands are either field references resolved against the data map or
// literals (numbers, optionally quoted strings). Both sides numeric means a
// numeric comparison; otherwise == and != compare as strings and ordering
// operators are an error.
var conditionOperators = []string{"<=", ">=", "==", "!=", "<", ">"}

// EvaluateCondition evaluates expr ("score > 80", "status == active",
// "delta >= -5") against data. Unparseable expressions return an error
// rather than a silent false.
func EvaluateCondition(expr string, data map[string]interface{}) (bool, error) {
	left, op, right, err := splitCondition(expr)
	if err != nil {
		return false, err
	}

	lv := resolveOperand(left, data)
	rv := resolveOperand(right, data)

	lf, lNum := toFloat(lv)
	rf, rNum := toFloat(rv)

	if lNum && rNum {
		switch op {
		case "<":
			return lf < rf, nil
		case ">":
			return lf > rf, nil
		case "<=":
			return lf <= rf, nil
		case ">=":
			return lf >= rf, nil
		case "==":
			return lf == rf, nil
		case "!=":
			return lf != rf, nil
		}
	}

	ls := fmt.Sprintf("%v", lv)
	rs := fmt.Sprintf("%v", rv)
	switch op {
	case "==":
		return ls == rs, nil
	case "!=":
		return ls != rs, nil
	}
	return false, fmt.Errorf("operator %q requires numeric operands in %q", op, expr)
}

// splitCondition finds the first operator occurrence, trying two-character
// operators before their one-character prefixes so ">=" is never read as ">".
func splitCondition(expr string) (left, op, right string, err error) {
	for i := 0; i < len(expr); i++ {
		for _, candidate := range conditionOperators {
			if !strings.HasPrefix(expr[i:], candidate) {
				continue
			}
			left = strings.TrimSpace(expr[:i])
			right = strings.TrimSpace(expr[i+len(candidate):])
			if left == "" || right == "" {
				return "", "", "", fmt.Errorf("condition %q is missing an operand", expr)
			}
			return left, candidate, right, nil
		}
	}
	return "", "", "", fmt.Errorf("condition %q has no comparison operator", expr)
}

// resolveOperand looks token up in data, falling back to the token itself as
// a literal. Quoted literals are unquoted.
func resolveOperand(token string, data map[string]interface{}) interface{} {
	if data != nil {
		if v, ok := data[token]; ok {
			return v
		}
	}
	if len(token) >= 2 {
		if (token[0] == '"' && token[len(token)-1] == '"') ||
			(token[0] == '\'' && token[len(token)-1] == '\'') {
			return token[1 : len(token)-1]
		}
	}
	return token
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
