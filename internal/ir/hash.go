package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix leaves room for
// changing the encoding without colliding with old hashes.
const (
	DomainProgram = "pyxlate/program/v1"
	DomainOutput  = "pyxlate/output/v1"
	DomainSource  = "pyxlate/source/v1"
)

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data). The null byte keeps the domain/data
// boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ProgramHash returns the content hash of a program's canonical encoding.
// Two programs hash equal exactly when they have the same statements,
// values and source positions.
func ProgramHash(prog *Program) (string, error) {
	canonical, err := MarshalCanonical(prog)
	if err != nil {
		return "", fmt.Errorf("ProgramHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProgram, canonical), nil
}

// OutputHash identifies generated code for one target.
func OutputHash(target, code string) string {
	return hashWithDomain(DomainOutput, []byte(target+"\x00"+code))
}

// SourceHash identifies input text byte for byte.
func SourceHash(src string) string {
	return hashWithDomain(DomainSource, []byte(src))
}
