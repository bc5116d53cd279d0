package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashContent(t *testing.T) {
	a := HashContent([]byte("1,2,0\n"), []byte("3,4,0\n"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashContent([]byte("1,2,0\n"), []byte("3,4,0\n")))
	assert.NotEqual(t, a, HashContent([]byte("3,4,0\n"), []byte("1,2,0\n")))
	assert.NotEqual(t,
		HashContent([]byte("ab"), []byte("c")),
		HashContent([]byte("a"), []byte("bc")))
}
