package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katanacore/machine/errors"
)

func TestErrorfFormatsPattern(t *testing.T) {
	err := errors.Errorf(errors.BadAddress, 0x8c010000)
	assert.Equal(t, fmt.Sprintf(errors.BadAddress, 0x8c010000), err.Error())
}

func TestIsMatchesPattern(t *testing.T) {
	err := errors.Errorf(errors.BadAlign, 0x8c010001, 4)
	assert.True(t, errors.Is(err, errors.BadAlign))
	assert.False(t, errors.Is(err, errors.BadAddress))
}

func TestHeadReturnsPattern(t *testing.T) {
	err := errors.Errorf(errors.SceneOverflow, 4096)
	assert.Equal(t, errors.SceneOverflow, errors.Head(err))
}

func TestHeadOnPlainErrorReturnsMessage(t *testing.T) {
	plain := fmt.Errorf("plain failure")
	assert.Equal(t, "plain failure", errors.Head(plain))
}

func TestHasWalksWrappedChain(t *testing.T) {
	inner := errors.Errorf(errors.BadAddress, 0x8c010000)
	outer := errors.Errorf("scene assembly: %v", inner)

	assert.True(t, errors.Has(outer, errors.BadAddress))
	assert.False(t, errors.Has(outer, errors.TAError))
}

func TestHasOnNilIsFalse(t *testing.T) {
	assert.False(t, errors.Has(nil, errors.BadAddress))
	assert.False(t, errors.IsAny(nil))
}

func TestErrorCollapsesAdjacentDuplicatePart(t *testing.T) {
	inner := errors.Errorf(errors.UnknownModule, "aica")
	outer := errors.Errorf("unknown module in save state: %v", inner)

	assert.Equal(t, inner.Error(), outer.Error())
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "FATAL", errors.FATAL.String())
	assert.Equal(t, "TRACE", errors.TRACE.String())
}
