package scope

import (
	"fmt"
	"reflect"
)

// OwnerFunc provides the current owner (e.g. the page on screen).
type OwnerFunc func() any

// OwnerID derives a registry key from an owner.
//
// Strings are used as is; values implementing OwnerID() string supply their own id;
// pointers map to "<type>@<address>", which is stable for the owner's lifetime.
func OwnerID(owner any) string {
	switch v := owner.(type) {
	case nil:
		return ""
	case string:
		return v
	case interface{ OwnerID() string }:
		return v.OwnerID()
	}
	rv := reflect.ValueOf(owner)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if rv.IsNil() {
			return ""
		}
		return fmt.Sprintf("%T@%#x", owner, rv.Pointer())
	default:
		return fmt.Sprintf("%T:%v", owner, owner)
	}
}
