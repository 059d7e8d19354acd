package query

import (
	"strings"

	"github.com/sethunthunder111/json-database-st/pkg/document"
)

// Match reports whether item satisfies query. The query must be an
// object; each key is resolved as a dotted path within the item and its
// condition must hold (AND). Anything other than an object matches
// nothing.
func Match(item, q *document.Value) bool {
	if q == nil || q.Kind() != document.KindObject {
		return false
	}
	for _, key := range q.Keys() {
		cond, _ := q.Field(key)
		val, present := document.Get(item, key)
		if !present {
			val = nil
		}
		if !checkCondition(val, present, cond) {
			return false
		}
	}
	return true
}

// checkCondition evaluates one field condition. A non-object condition,
// or an object without $-operators, is a deep-equality test; a missing
// field deep-equals only null. Otherwise every operator in the bag must
// match.
func checkCondition(val *document.Value, present bool, cond *document.Value) bool {
	if cond.Kind() == document.KindObject {
		hasOps := false
		for _, k := range cond.Keys() {
			if strings.HasPrefix(k, "$") {
				hasOps = true
				break
			}
		}
		if hasOps {
			for _, op := range cond.Keys() {
				target, _ := cond.Field(op)
				if !matchOperator(val, present, op, target) {
					return false
				}
			}
			return true
		}
	}
	if !present {
		return cond.IsNull()
	}
	return document.Equal(val, cond)
}

// matchOperator evaluates one $-operator. A missing field is matched
// only by $exists:false; every other operator fails on it, including
// $ne and $nin.
func matchOperator(val *document.Value, present bool, op string, target *document.Value) bool {
	if !present {
		if op != "$exists" {
			return false
		}
		want, ok := target.AsBool()
		return ok && !want
	}

	switch op {
	case "$eq":
		return document.Equal(val, target)
	case "$ne":
		return !document.Equal(val, target)
	case "$gt":
		c, ok := document.Compare(val, target)
		return ok && c > 0
	case "$gte":
		c, ok := document.Compare(val, target)
		return ok && c >= 0
	case "$lt":
		c, ok := document.Compare(val, target)
		return ok && c < 0
	case "$lte":
		c, ok := document.Compare(val, target)
		return ok && c <= 0
	case "$in":
		return containsValue(target, val)
	case "$nin":
		if target.Kind() != document.KindArray {
			return false
		}
		return !containsValue(target, val)
	case "$exists":
		want, ok := target.AsBool()
		return ok && want
	default:
		return false
	}
}

func containsValue(arr, v *document.Value) bool {
	if arr.Kind() != document.KindArray {
		return false
	}
	for i := 0; i < arr.Len(); i++ {
		if document.Equal(arr.Index(i), v) {
			return true
		}
	}
	return false
}
