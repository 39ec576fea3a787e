// Package runtime links assembled template modules into callable units.
//
// Linking resolves the import units of a module against the function
// libraries and, through an Importer, against other template modules. Each
// definition unit becomes both a Go-callable Unit and a cty function that
// placeholders of the same module, and of modules importing it, can call.
package runtime
