package projector

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrNoObjects indicates that there was nothing to project.
var ErrNoObjects = errors.New("no objects provided")

// MixedTypesError indicates that the objects do not share a single type.
type MixedTypesError struct {
	Types []reflect.Type
}

func (e *MixedTypesError) Error() string {
	names := make([]string, len(e.Types))
	for i, t := range e.Types {
		names[i] = t.String()
	}
	return fmt.Sprintf("objects of a single type are required per table, got: %s", strings.Join(names, ", "))
}

// ShapeError indicates that a type cannot be used as a record shape.
type ShapeError struct {
	Type reflect.Type
}

func (e *ShapeError) Error() string {
	if e.Type == nil {
		return "no record type given"
	}
	return fmt.Sprintf("type %s is not a record type (struct or map with string keys)", e.Type)
}
