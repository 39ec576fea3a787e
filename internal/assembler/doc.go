// Package assembler turns parsed blocks into unit descriptors.
//
// Import blocks are kept verbatim; their meaning is decided when a module is
// linked. Each definition block goes through the transform pipeline, then
// its signature and body are compiled into an intermediate form that the
// runtime evaluates lazily, once per call.
//
// Whether a unit notifies the debug observer is fixed here: the observer
// slot is read once per definition and the value found is captured in the
// unit.
package assembler
