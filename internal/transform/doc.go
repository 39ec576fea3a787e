// Package transform holds the named text rewrites that a definition block
// can request through its option list.
//
// A transform receives the current body and doc text and returns new ones.
// Transforms are applied in the order the options are listed, each one
// seeing the output of the previous step. Names are resolved against a
// Registry when a document is assembled, never while it is parsed.
//
// Registering a name that already exists replaces the previous transform.
// The last registration wins.
package transform
