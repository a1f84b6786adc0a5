package classify

import (
	"errors"
	"fmt"
)

// CodeFunc extracts a backend error code from err. It returns false when err
// carries no code the caller knows about.
type CodeFunc func(err error) (code string, ok bool)

// Code classifies errors by their backend code. The caller supplies how the
// code is read, so backends never have to be detected at runtime.
type Code struct {
	extract   CodeFunc
	transient map[string]struct{}
}

// NewCode creates a classifier that reports err as transient when extract
// finds a code listed in codes.
func NewCode(extract CodeFunc, codes ...string) *Code {
	c := &Code{extract: extract, transient: make(map[string]struct{}, len(codes))}
	for _, code := range codes {
		c.transient[code] = struct{}{}
	}
	return c
}

// IsTransient determines if an error is temporary and retryable.
func (c *Code) IsTransient(err error) bool {
	if err == nil || c.extract == nil {
		return false
	}
	code, ok := c.extract(err)
	if !ok {
		return false
	}
	_, found := c.transient[code]
	return found
}

// CodeOf returns a CodeFunc for error types that expose their code through a
// method, for example func (e *CacheError) Code() int. E is the concrete error
// type to look for in the chain.
func CodeOf[E interface {
	error
	Code() C
}, C comparable]() CodeFunc {
	return func(err error) (string, bool) {
		var target E
		if !errors.As(err, &target) {
			return "", false
		}
		return fmt.Sprint(target.Code()), true
	}
}
