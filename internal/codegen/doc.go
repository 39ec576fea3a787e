// Package codegen renders assembled template modules for inspection: as Go
// source, as canonical template text, and as IR dumps in several
// encodings. It works on the assembled module and never links it.
package codegen
