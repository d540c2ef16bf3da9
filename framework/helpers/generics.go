package helpers

import (
	"golang.org/x/exp/slices"
)

// CopyOf returns a shallow copy of a slice; a nil slice stays nil.
func CopyOf[V any](s []V) []V {
	if s == nil {
		return nil
	}
	return append([]V(nil), s...)
}

// IfElse returns valueIfTrue or valueIfFalse depending on isTrue.
func IfElse[V any](isTrue bool, valueIfTrue, valueIfFalse V) V {
	if isTrue {
		return valueIfTrue
	}
	return valueIfFalse
}

// SliceContains returns true if and only if the slice has an element that equals the value.
func SliceContains[V comparable](value V, slice []V) bool {
	return slices.Contains(slice, value)
}

// Sorted returns a sorted copy of the slice, leaving the original unchanged.
func Sorted[V ~string | ~int](s []V) []V {
	ret := CopyOf(s)
	slices.Sort(ret)
	return ret
}
