// Package interp is a small in-process interpreter for the command language
// the CLI assembles. It understands command definition files, a handful of
// built-in commands (verbosity, local/onfail blocks, file import, help,
// messages) and user-defined commands expanded from their definitions.
//
// It holds no image data: the item List carries named byte blobs, which is
// all the help machinery needs.
package interp
