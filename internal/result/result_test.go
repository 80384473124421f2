package result

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/semgo/internal/ast"
)

func TestFromRange(t *testing.T) {
	r := ast.Range{File: "a.go", StartLine: 1, StartCol: 2, EndLine: 3, EndCol: 4}
	loc := FromRange(r)
	assert.Equal(t, Location{File: "a.go", StartLine: 1, StartCol: 2, EndLine: 3, EndCol: 4}, loc)
}

func TestKeyIncludesRuleAndLocation(t *testing.T) {
	f := Finding{RuleID: "no-md5", Location: Location{File: "a.go", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 5}}
	assert.Equal(t, "a.go:1:1:1:5:no-md5", f.Key())
}

func TestLessOrdersByFileThenPosition(t *testing.T) {
	a := Finding{RuleID: "r1", Location: Location{File: "a.go", StartLine: 1, StartCol: 1}}
	b := Finding{RuleID: "r1", Location: Location{File: "b.go", StartLine: 1, StartCol: 1}}
	assert.True(t, Less(a, b))
	assert.False(t, Less(b, a))
}

func TestLessOrdersByRuleIDWhenLocationsMatch(t *testing.T) {
	a := Finding{RuleID: "a-rule", Location: Location{File: "x.go", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 2}}
	b := Finding{RuleID: "b-rule", Location: Location{File: "x.go", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 2}}
	assert.True(t, Less(a, b))
}
