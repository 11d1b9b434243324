// Package ir provides the language-neutral intermediate representation the
// translator builds from a syntax tree and hands to the code generators.
//
// This package contains type definitions and their encoding only. The
// compiler, resolver and codegen packages import ir; ir imports nothing
// internal except source positions.
//
// Key design constraints:
//   - Node sets are closed: Stmt and Expr are sealed interfaces, so every
//     consumer can switch over them exhaustively
//   - Nodes are immutable once built; later passes key side tables by node
//     pointer instead of writing into nodes
//   - The canonical encoding carries no floats; float literals are encoded
//     as their shortest round-trip text
//   - All JSON keys use snake_case
package ir
