package dynload

import (
	"fmt"
	"reflect"
)

// Artifact looks up name in ns and asserts it to T. A missing name yields
// the zero value and false.
func Artifact[T any](ns Namespace, name string) (T, bool, error) {
	var zero T
	v, ok := ns.Lookup(name)
	if !ok {
		return zero, false, nil
	}
	t, err := as[T](name, v)
	if err != nil {
		return zero, true, err
	}
	return t, true, nil
}

// Components returns res.Components as a map of T. Nil artifacts become the
// zero value of T.
func Components[T any](res Result) (map[string]T, error) {
	out := make(map[string]T, len(res.Components))
	for name, v := range res.Components {
		t, err := as[T](name, v)
		if err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}

func as[T any](name string, v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, &TypeMismatchError{
			Name:     name,
			Expected: reflect.TypeFor[T]().String(),
			Actual:   fmt.Sprintf("%T", v),
		}
	}
	return t, nil
}
