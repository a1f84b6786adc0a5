package classify

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type cacheError struct {
	code int
}

func (e *cacheError) Error() string { return fmt.Sprintf("cache error %d", e.code) }
func (e *cacheError) Code() int     { return e.code }

func TestCode_IsTransient(t *testing.T) {
	classifier := NewCode(CodeOf[*cacheError, int](), "503", "429")

	assert.True(t, classifier.IsTransient(&cacheError{code: 503}))
	assert.True(t, classifier.IsTransient(fmt.Errorf("get session: %w", &cacheError{code: 429})))
	assert.False(t, classifier.IsTransient(&cacheError{code: 404}))
	assert.False(t, classifier.IsTransient(errors.New("503")), "errors without a code are permanent")
	assert.False(t, classifier.IsTransient(nil))
}

func TestCode_NilExtractor(t *testing.T) {
	classifier := NewCode(nil, "503")
	assert.False(t, classifier.IsTransient(&cacheError{code: 503}))
}

func TestPostgresCode(t *testing.T) {
	code, ok := PostgresCode(fmt.Errorf("exec: %w", pgError("40P01")))
	assert.True(t, ok)
	assert.Equal(t, "40P01", code)

	_, ok = PostgresCode(errors.New("plain"))
	assert.False(t, ok)
}
