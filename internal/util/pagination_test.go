package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	offset, limit := Calculate(3, 10)
	assert.Equal(t, 20, offset)
	assert.Equal(t, 10, limit)

	offset, limit = Calculate(0, 0)
	assert.Equal(t, 0, offset)
	assert.Equal(t, DefaultPageSize, limit)

	_, limit = Calculate(1, 500)
	assert.Equal(t, DefaultPageSize, limit)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 5, ParseIntDefault("", 5))
	assert.Equal(t, 5, ParseIntDefault("five", 5))
	assert.Equal(t, 7, ParseIntDefault("7", 5))
}
