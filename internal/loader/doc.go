// Package loader resolves template modules by name.
//
// A Resolver answers one question: is there a module called name at
// searchPath? It returns ok=false and a nil error to decline, which lets a
// Chain move on to the next resolver. FileLoader reads and compiles source
// files on every call; Static serves modules registered up front.
package loader
