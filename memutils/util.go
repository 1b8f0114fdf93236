package memutils

import (
	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// Number is any integer type that offsets, sizes, and alignments are expressed in
type Number interface {
	constraints.Integer
}

// CheckPow2 returns PowerOfTwoError, annotated with the provided name, if number is not a power of two.
// Zero is treated as an error as well, since it cannot be used as an alignment.
func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a power of two
func AlignUp[T Number](value T, alignment T) T {
	return (value + alignment - 1) &^ (alignment - 1)
}
