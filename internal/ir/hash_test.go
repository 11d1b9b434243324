package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProgram(n int64) *Program {
	return &Program{Statements: []Stmt{
		&Assign{Position: pos(1, 3), Name: "x", Value: IntLit(pos(1, 5), n)},
		&Print{Position: pos(2, 1), Value: &VarRef{Position: pos(2, 7), Name: "x"}},
	}}
}

func TestProgramHashDeterminism(t *testing.T) {
	h1, err := ProgramHash(sampleProgram(5))
	require.NoError(t, err)
	h2, err := ProgramHash(sampleProgram(5))
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "ProgramHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestProgramHashChangesWithContent(t *testing.T) {
	h1, err := ProgramHash(sampleProgram(5))
	require.NoError(t, err)
	h2, err := ProgramHash(sampleProgram(6))
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHashDomainSeparation(t *testing.T) {
	data := []byte("same bytes")
	assert.NotEqual(t, hashWithDomain(DomainProgram, data), hashWithDomain(DomainOutput, data))
}

func TestOutputHashDependsOnTarget(t *testing.T) {
	code := "int main(void) {\n}\n"
	assert.NotEqual(t, OutputHash("c", code), OutputHash("cpp", code))
	assert.Equal(t, OutputHash("c", code), OutputHash("c", code))
}

func TestSourceHash(t *testing.T) {
	a := SourceHash("x = 1\n")
	assert.Len(t, a, 64)
	assert.Equal(t, a, SourceHash("x = 1\n"))
	assert.NotEqual(t, a, SourceHash("x = 1"))
	assert.NotEqual(t, hashWithDomain(DomainProgram, []byte("x = 1\n")), a)
}
