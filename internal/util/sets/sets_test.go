package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := New("b", "a")
	s.Add("c")

	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("z"))
	assert.Equal(t, []string{"a", "b", "c"}, Sorted(s))
	assert.Equal(t, []string{"x", "y"}, s.Missing([]string{"a", "x", "c", "y"}))
	assert.Nil(t, New[string]().Missing(nil))
}
