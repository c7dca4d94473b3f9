package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringToNullString(t *testing.T) {
	assert.False(t, StringToNullString("").Valid)
	ns := StringToNullString("abc")
	assert.True(t, ns.Valid)
	assert.Equal(t, "abc", ns.String)
}

func TestBoolToNumber(t *testing.T) {
	assert.Equal(t, 1, BoolToNumber(true))
	assert.Equal(t, 0, BoolToNumber(false))
}
