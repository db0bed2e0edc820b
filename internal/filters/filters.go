// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/procurectl/internal/attrs"
	"github.com/staranto/procurectl/internal/driller"
)

// exprRegex splits an expression into key, operator and target. Operators are
// one of = ^ ~ < > @ or /, optionally prefixed with '!'.
var exprRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Expr is a single parsed --filter expression.
type Expr struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// Server reports whether the expression is passed to the server instead of
// being applied to fetched rows. Those keys are written with a leading _.
func (e Expr) Server() bool {
	return strings.HasPrefix(e.Key, "_")
}

// BuildExprs parses a --filter spec. Malformed entries are logged and skipped.
func BuildExprs(spec string) []Expr {
	//nolint:prealloc
	var exprs []Expr

	if spec == "" {
		return exprs
	}

	delim := ","
	if d, ok := os.LookupEnv("PROCURECTL_FILTER_DELIM"); ok && d != "" {
		delim = d
	}

	for _, exprSpec := range strings.Split(spec, delim) {
		parts := exprRegex.FindStringSubmatch(exprSpec)
		if parts == nil || parts[1] == "" {
			log.Error("invalid filter: " + exprSpec)
			continue
		}

		negate := strings.HasPrefix(parts[2], "!")
		if negate {
			parts[2] = strings.TrimPrefix(parts[2], "!")
		}

		exprs = append(exprs, Expr{
			Key:     parts[1],
			Negate:  negate,
			Operand: parts[2],
			Target:  parts[3],
		})
	}

	return exprs
}

// ServerFilter collects the _key=value expressions into a Filter for the
// query string. Other operands cannot be expressed server side and are
// dropped with a warning.
func ServerFilter(exprs []Expr) Filter {
	f := Filter{}
	for _, e := range exprs {
		if !e.Server() {
			continue
		}
		if e.Operand != "=" || e.Negate {
			log.Warnf("server filter %s only supports =", e.Key)
			continue
		}
		f.Set(strings.TrimPrefix(e.Key, "_"), e.Target)
	}
	return f
}

// FilterDataset returns the rows of candidates that satisfy every expression
// in spec, projected onto attrs. Values are not transformed here; that is
// left to the output phase.
func FilterDataset(candidates gjson.Result, attrs attrs.AttrList, spec string) []map[string]interface{} {
	//nolint:prealloc
	var filteredResults []map[string]interface{}

	exprs := BuildExprs(spec)

	for _, candidate := range candidates.Array() {
		if !applyExprs(candidate, attrs, exprs) {
			continue
		}

		result := make(map[string]interface{})
		for i := range attrs {
			attr := attrs[i]
			if attr.Key == "*" {
				continue
			}
			value := driller.Driller(candidate.Raw, attr.Key)
			result[attr.OutputKey] = value.Value()
		}
		filteredResults = append(filteredResults, result)
	}

	return filteredResults
}

// applyExprs returns true if candidate matches all of exprs. Server
// expressions were already applied by the server and are ignored here.
func applyExprs(candidate gjson.Result, attrs attrs.AttrList, exprs []Expr) bool {
	if len(exprs) == 0 {
		return true
	}

	for _, expr := range exprs {
		if expr.Server() {
			continue
		}

		// An unknown key is reported and skipped rather than rejecting the row.
		attr, ok := attrs.ByOutputKey(expr.Key)
		if !ok {
			log.Warn(fmt.Sprintf("filter key not found: %s", expr.Key))
			continue
		}

		value := driller.Driller(candidate.Raw, attr.Key).Value()
		if value == nil {
			return false
		}

		result := true
		if v, ok := value.(string); ok {
			result = checkStringOperand(v, expr)
		} else if v, ok := value.(bool); ok {
			result = checkStringOperand(fmt.Sprintf("%v", v), expr)
		} else if num, ok := toFloat64(value); ok {
			result = checkNumericOperand(num, expr)
		} else if expr.Operand == "@" {
			result = checkContainsOperand(value, expr)
		} else {
			result = false
		}

		if !result {
			return false
		}
	}

	return true
}

// checkContainsOperand evaluates '@' against slice or map values.
func checkContainsOperand(value interface{}, expr Expr) bool {
	switch val := value.(type) {
	case []any:
		for _, item := range val {
			if fmt.Sprint(item) == expr.Target {
				return !expr.Negate
			}
		}
		return expr.Negate
	case map[string]any:
		_, found := val[expr.Target]
		return found != expr.Negate
	default:
		log.Error(fmt.Sprintf("unsupported type for contains filtering: %T", value))
		return false
	}
}

// checkNumericOperand compares with numeric semantics. Supported operands are
// = > and <, each of which may be negated.
func checkNumericOperand(value float64, expr Expr) bool {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(expr.Target), 64)
	if err != nil {
		log.Error("invalid numeric target: " + expr.Target)
		return false
	}

	switch expr.Operand {
	case "=":
		return (value == tgt) == !expr.Negate
	case ">":
		return (value > tgt) == !expr.Negate
	case "<":
		return (value < tgt) == !expr.Negate
	default:
		log.Error("unsupported numeric operand: " + expr.Operand)
		return false
	}
}

func checkStringOperand(value string, expr Expr) bool {
	switch expr.Operand {
	case "=":
		return value == expr.Target == !expr.Negate
	case "~":
		return strings.EqualFold(value, expr.Target) == !expr.Negate
	case "^":
		return strings.HasPrefix(value, expr.Target) == !expr.Negate
	case ">":
		return value > expr.Target == !expr.Negate
	case "<":
		return value < expr.Target == !expr.Negate
	case "@":
		return strings.Contains(value, expr.Target) == !expr.Negate
	case "/":
		matched, err := regexp.MatchString(expr.Target, value)
		if err != nil {
			log.Error("invalid regex: " + expr.Target)
			return false
		}
		return matched == !expr.Negate
	default:
		log.Error("unsupported filtering operand: " + expr.Operand)
		return false
	}
}

// toFloat64 normalizes numeric types. gjson only produces float64 but rows
// built in code may carry ints.
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
