package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinWithAnd(t *testing.T) {
	assert.Equal(t, "", JoinWithAnd(nil))
	assert.Equal(t, "a = $1", JoinWithAnd([]string{"a = $1"}))
	assert.Equal(t, "a = $1 AND b LIKE $2", JoinWithAnd([]string{"a = $1", "b LIKE $2"}))
}

func TestJoinWithOr(t *testing.T) {
	assert.Equal(t, "", JoinWithOr(nil))
	assert.Equal(t, "a = $1 OR b = $2", JoinWithOr([]string{"a = $1", "b = $2"}))
}
