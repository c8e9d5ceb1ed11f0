// Package lox implements a tree-walking interpreter for a small
// dynamically-typed language. The pipeline has four one-way stages:
//   - Lexing: source text to a token sequence, error-tolerant, with every
//     lexical error collected before a run is declared failed.
//   - Parsing: Pratt-style precedence climbing producing expression and
//     statement nodes, with synchronization at statement boundaries so one
//     run surfaces multiple independent syntax errors.
//   - Resolving: a static pass computing lexical-scope hop counts for
//     every variable reference and validating return/this/super placement.
//   - Evaluating: direct recursion over the tree against an environment
//     chain, with closures, classes, single inheritance, and bound methods.
//
// Comments beginning with `//` are ignored. Numbers are double precision;
// `print` writes a value per statement. Compile errors (lexical, syntactic,
// resolver) are accumulated and suppress execution entirely; runtime errors
// abort the program at the point of failure.
package lox
