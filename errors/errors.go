package errors

import (
	"fmt"
	"strings"
)

// Values is the type used to specify the arguments to Errorf.
type Values []interface{}

// curated is the error value returned by Errorf. It implements the error
// interface but keeps its pattern and arguments separate so that Is() and
// Has() can compare against the pattern without formatting the message.
type curated struct {
	pattern string
	values  Values
}

// Errorf creates a new curated error. Unlike fmt.Errorf the first argument
// is a fixed Category pattern (see categories.go), which lets Is/Has/Head
// classify the error later without string matching the formatted message.
func Errorf(pattern string, values ...interface{}) error {
	return curated{pattern: pattern, values: values}
}

// Error implements the go language error interface. The message is
// normalised so that wrapping an error of the same pattern does not produce
// an adjacent duplicate part.
func (e curated) Error() string {
	s := fmt.Errorf(e.pattern, e.values...).Error()

	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}
	return strings.Join(p, ": ")
}

// Head returns the formatting pattern used to create err, or err.Error() if
// err is not a curated error.
func Head(err error) string {
	if e, ok := err.(curated); ok {
		return e.pattern
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsAny reports whether err was created by Errorf.
func IsAny(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(curated)
	return ok
}

// Is reports whether err is a curated error created with the given pattern.
func Is(err error, pattern string) bool {
	if err == nil {
		return false
	}
	e, ok := err.(curated)
	return ok && e.pattern == pattern
}

// Has reports whether pattern occurs anywhere in err's wrapped chain.
func Has(err error, pattern string) bool {
	if err == nil || !IsAny(err) {
		return false
	}
	if Is(err, pattern) {
		return true
	}
	for _, v := range err.(curated).values {
		if e, ok := v.(error); ok {
			if Has(e, pattern) {
				return true
			}
		}
	}
	return false
}
