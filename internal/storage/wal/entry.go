package wal

import (
	"errors"
	"fmt"

	"github.com/sethunthunder111/json-database-st/pkg/document"
)

// Op identifies the operation kind.
type Op uint8

const (
	OpSet Op = iota
	OpDelete
)

// Operation is one durable mutation: replace the node at Path with
// Value, or remove the node at Path.
type Operation struct {
	Type  Op
	Path  string
	Value *document.Value
}

// ErrUnknownOperation is returned for lines that are valid JSON but not
// a recognisable operation.
var ErrUnknownOperation = errors.New("wal: unknown operation")

// NewSet builds a Set operation.
func NewSet(path string, value *document.Value) Operation {
	return Operation{Type: OpSet, Path: path, Value: value}
}

// NewDelete builds a Delete operation.
func NewDelete(path string) Operation {
	return Operation{Type: OpDelete, Path: path}
}

// Encode renders the operation in its external-tag wire form:
// {"Set":{"path":...,"value":...}} or {"Delete":{"path":...}}.
func (o Operation) Encode() []byte {
	inner := document.Object()
	inner.SetField("path", document.String(o.Path))
	switch o.Type {
	case OpSet:
		val := o.Value
		if val == nil {
			val = document.Null()
		}
		inner.SetField("value", val)
		outer := document.Object()
		outer.SetField("Set", inner)
		return outer.Encode()
	default:
		outer := document.Object()
		outer.SetField("Delete", inner)
		return outer.Encode()
	}
}

// Decode parses an operation from its wire form.
func Decode(data []byte) (Operation, error) {
	v, err := document.Parse(data)
	if err != nil {
		return Operation{}, fmt.Errorf("wal: decode: %w", err)
	}
	if v.Kind() != document.KindObject || v.Len() != 1 {
		return Operation{}, ErrUnknownOperation
	}
	tag := v.Keys()[0]
	body, _ := v.Field(tag)
	if body.Kind() != document.KindObject {
		return Operation{}, ErrUnknownOperation
	}
	pathVal, ok := body.Field("path")
	if !ok {
		return Operation{}, ErrUnknownOperation
	}
	path, ok := pathVal.AsString()
	if !ok {
		return Operation{}, ErrUnknownOperation
	}

	switch tag {
	case "Set":
		value, ok := body.Field("value")
		if !ok {
			return Operation{}, ErrUnknownOperation
		}
		return NewSet(path, value), nil
	case "Delete":
		return NewDelete(path), nil
	default:
		return Operation{}, ErrUnknownOperation
	}
}
