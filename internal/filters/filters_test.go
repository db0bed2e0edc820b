// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/staranto/procurectl/internal/attrs"
)

func TestBuildExprs(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		delimiter string
		want      []Expr
	}{
		{name: "empty spec", spec: ""},
		{
			name: "single exact match",
			spec: "status=APPROVED",
			want: []Expr{{Key: "status", Operand: "=", Target: "APPROVED"}},
		},
		{
			name: "negated prefix",
			spec: "prNo!^PR-2024",
			want: []Expr{{Key: "prNo", Operand: "^", Target: "PR-2024", Negate: true}},
		},
		{
			name: "multiple",
			spec: "status~approved,amount>100",
			want: []Expr{
				{Key: "status", Operand: "~", Target: "approved"},
				{Key: "amount", Operand: ">", Target: "100"},
			},
		},
		{
			name: "regex keeps the rest of the spec as target",
			spec: "remarks/^urgent.*",
			want: []Expr{{Key: "remarks", Operand: "/", Target: "^urgent.*"}},
		},
		{
			name: "invalid entries skipped",
			spec: "status=OPEN,garbage,=nokey,amount<5",
			want: []Expr{
				{Key: "status", Operand: "=", Target: "OPEN"},
				{Key: "amount", Operand: "<", Target: "5"},
			},
		},
		{
			name:      "custom delimiter",
			spec:      "remarks@a,b;status=OPEN",
			delimiter: ";",
			want: []Expr{
				{Key: "remarks", Operand: "@", Target: "a,b"},
				{Key: "status", Operand: "=", Target: "OPEN"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.delimiter != "" {
				t.Setenv("PROCURECTL_FILTER_DELIM", tt.delimiter)
			}
			got := BuildExprs(tt.spec)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServerFilter(t *testing.T) {
	exprs := BuildExprs("_status=OPEN,_dept!=FIN,_from>2025,amount>5,_requester= ")
	f := ServerFilter(exprs)
	assert.Equal(t, Filter{"status": "OPEN"}, f)
}

func TestCheckStringOperand(t *testing.T) {
	tests := []struct {
		value string
		expr  Expr
		want  bool
	}{
		{"APPROVED", Expr{Operand: "=", Target: "APPROVED"}, true},
		{"APPROVED", Expr{Operand: "=", Target: "APPROVED", Negate: true}, false},
		{"Approved", Expr{Operand: "~", Target: "APPROVED"}, true},
		{"PR-2025-01", Expr{Operand: "^", Target: "PR-2025"}, true},
		{"PR-2024-01", Expr{Operand: "^", Target: "PR-2025"}, false},
		{"b", Expr{Operand: ">", Target: "a"}, true},
		{"b", Expr{Operand: "<", Target: "a"}, false},
		{"office paper", Expr{Operand: "@", Target: "paper"}, true},
		{"office paper", Expr{Operand: "@", Target: "toner", Negate: true}, true},
		{"PR-001", Expr{Operand: "/", Target: `^PR-\d+$`}, true},
		{"PR-001", Expr{Operand: "/", Target: `(`}, false},
		{"x", Expr{Operand: "?", Target: "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.value+tt.expr.Operand+tt.expr.Target, func(t *testing.T) {
			assert.Equal(t, tt.want, checkStringOperand(tt.value, tt.expr))
		})
	}
}

func TestCheckNumericOperand(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		expr  Expr
		want  bool
	}{
		{"equal", 100, Expr{Operand: "=", Target: "100"}, true},
		{"not equal", 100, Expr{Operand: "=", Target: "100", Negate: true}, false},
		{"greater", 150.5, Expr{Operand: ">", Target: " 100 "}, true},
		{"less", 50, Expr{Operand: "<", Target: "100"}, true},
		{"not less", 50, Expr{Operand: "<", Target: "100", Negate: true}, false},
		{"bad target", 50, Expr{Operand: "<", Target: "lots"}, false},
		{"unsupported operand", 50, Expr{Operand: "^", Target: "5"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkNumericOperand(tt.value, tt.expr))
		})
	}
}

func TestCheckContainsOperand(t *testing.T) {
	assert.True(t, checkContainsOperand([]any{"FIN", "OPS"}, Expr{Operand: "@", Target: "OPS"}))
	assert.False(t, checkContainsOperand([]any{"FIN"}, Expr{Operand: "@", Target: "OPS"}))
	assert.True(t, checkContainsOperand([]any{"FIN"}, Expr{Operand: "@", Target: "OPS", Negate: true}))
	assert.True(t, checkContainsOperand([]any{1.0, 2.0}, Expr{Operand: "@", Target: "2"}))
	assert.True(t, checkContainsOperand(map[string]any{"urgent": true}, Expr{Operand: "@", Target: "urgent"}))
	assert.False(t, checkContainsOperand(map[string]any{"urgent": true}, Expr{Operand: "@", Target: "urgent", Negate: true}))
	assert.False(t, checkContainsOperand(42, Expr{Operand: "@", Target: "4"}))
}

func TestToFloat64(t *testing.T) {
	for _, v := range []interface{}{float64(3), float32(3), int(3), int32(3), int64(3), uint(3), uint32(3), uint64(3)} {
		got, ok := toFloat64(v)
		assert.True(t, ok, "%T", v)
		assert.Equal(t, 3.0, got, "%T", v)
	}
	_, ok := toFloat64("3")
	assert.False(t, ok)
}

const rowsJSON = `[
	{"prNo": "PR001", "status": "APPROVED", "totalAmount": 1500, "urgent": true, "requester": {"name": "Dana"}, "tags": ["it"]},
	{"prNo": "PR002", "status": "DRAFT", "totalAmount": 80, "urgent": false, "requester": {"name": "Lee"}, "tags": ["ops", "it"]},
	{"prNo": "PR003", "status": "APPROVED", "totalAmount": 99.5, "urgent": false, "requester": {"name": "Ari"}}
]`

func testAttrs(t *testing.T) attrs.AttrList {
	t.Helper()
	a := attrs.AttrList{}
	require.NoError(t, a.Set("prNo,status,totalAmount:amount,urgent,requester.name:requester,!tags"))
	return a
}

func prNos(rows []map[string]interface{}) []string {
	var result []string
	for _, r := range rows {
		result = append(result, r["prNo"].(string))
	}
	return result
}

func TestFilterDataset(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want []string
	}{
		{name: "no filter", spec: "", want: []string{"PR001", "PR002", "PR003"}},
		{name: "status exact", spec: "status=APPROVED", want: []string{"PR001", "PR003"}},
		{name: "amount and status", spec: "status=APPROVED,amount>100", want: []string{"PR001"}},
		{name: "nested key by output name", spec: "requester~dana", want: []string{"PR001"}},
		{name: "bool", spec: "urgent=false", want: []string{"PR002", "PR003"}},
		{name: "excluded attr still filters", spec: "tags@ops", want: []string{"PR002"}},
		{name: "missing value fails the row", spec: "tags=it", want: []string{"PR001"}},
		{name: "unknown key is ignored", spec: "nope=1", want: []string{"PR001", "PR002", "PR003"}},
		{name: "server expressions ignored", spec: "_status=DRAFT", want: []string{"PR001", "PR002", "PR003"}},
		{name: "nothing matches", spec: "status=VOID", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := FilterDataset(gjson.Parse(rowsJSON), testAttrs(t), tt.spec)
			assert.Equal(t, tt.want, prNos(rows))
		})
	}
}

func TestFilterDataset_Projection(t *testing.T) {
	rows := FilterDataset(gjson.Parse(rowsJSON), testAttrs(t), "prNo=PR002")
	require.Len(t, rows, 1)

	assert.Equal(t, map[string]interface{}{
		"prNo":      "PR002",
		"status":    "DRAFT",
		"amount":    80.0,
		"urgent":    false,
		"requester": "Lee",
		"tags":      []interface{}{"ops", "it"},
	}, rows[0])
}
