package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindPolicy_KeepWinsOverDrop(t *testing.T) {
	p := NewKindPolicy([]string{"comment"}, []string{"comment", ","}, true)

	assert.True(t, p.Keeps("comment"), "keep list wins when a kind is in both")
	assert.False(t, p.Keeps(","))
	assert.True(t, p.Keeps("identifier"), "unlisted kinds fall back to DefaultKeep")
}

func TestKindPolicy_DefaultDropFalse(t *testing.T) {
	p := NewKindPolicy([]string{"chunk"}, nil, false)

	assert.True(t, p.Keeps("chunk"))
	assert.False(t, p.Keeps("identifier"))
}

func TestDefaultPolicy_DropsPunctuation(t *testing.T) {
	p := DefaultPolicy()

	for _, kind := range DefaultDropKinds {
		assert.False(t, p.Keeps(kind), "punctuation kind %q should be dropped", kind)
	}
	assert.True(t, p.Keeps("function_declaration"))
	assert.True(t, p.Keeps("ERROR"), "error vertices survive the default policy")
}
