package digest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum_KnownVectors(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Sum(nil))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", Sum([]byte("abc")))
}

func TestSum_Deterministic(t *testing.T) {
	b := bytes.Repeat([]byte{0xff, 0xd8, 0xff}, 1000)
	assert.Equal(t, Sum(b), Sum(append([]byte(nil), b...)))
	assert.NotEqual(t, Sum(b), Sum(b[1:]))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(Sum([]byte("x"))))
	assert.Len(t, Sum([]byte("x")), Size)

	for _, s := range []string{
		"",
		"abc",
		strings.ToUpper(Sum([]byte("x"))),
		strings.Repeat("g", Size),
		Sum([]byte("x")) + "0",
	} {
		assert.False(t, Valid(s), "input %q", s)
	}
}
