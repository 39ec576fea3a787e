// Package parser splits an ftmpl source document into blocks.
//
// A document is line oriented. Every line that starts with '[' in column 0
// is a control line:
//
//	[import NAME]                  import block
//	[from NAME import a, b]        import block
//	[name(arg, other = "x")]       definition block
//	[name(arg); opt_one, opt_two]  definition block with transform options
//
// A definition control line may be followed by a single doc line of the form
// ["free text"]. All remaining lines up to the next control line, or the end
// of the document, form the block body and are kept verbatim.
//
// Imports must precede the first definition and a document must define at
// least one unit. Option names are not validated here; they are resolved by
// the transform registry during assembly.
package parser
