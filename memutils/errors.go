package memutils

import "github.com/cockroachdb/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// ExhaustedError is wrapped into the panic messages and errors produced when a fixed-capacity
// structure (handle table, static descriptor heap) has no room left
var ExhaustedError error = errors.New("fixed-capacity pool exhausted")
