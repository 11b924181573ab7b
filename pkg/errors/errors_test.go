package errors

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeCreation, "nothing"))
}

func TestWrapPreservesStack(t *testing.T) {
	inner := New(ErrorTypeCreation, "load failed")
	outer := Wrap(inner, ErrorTypeCancelled, "allocate")

	require.NotNil(t, outer)
	assert.Equal(t, inner.Stack, outer.Stack)
	assert.True(t, IsType(outer, ErrorTypeCancelled))
	assert.False(t, IsType(outer, ErrorTypeCreation))
	assert.Equal(t, "cancelled: allocate: creation: load failed", outer.Error())
}

func TestIsTypeForeignError(t *testing.T) {
	assert.False(t, IsType(io.EOF, ErrorTypeNotFound))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeNotFound, "missing").WithDetail("handle", 7)
	assert.Equal(t, 7, err.Details["handle"])
	assert.NotEmpty(t, err.Stack)
}
