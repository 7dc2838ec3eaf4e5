package interp

import _ "embed"

// StdlibName is the source name of the embedded standard library.
const StdlibName = "stdlib"

//go:embed stdlib.gmic
var stdlib []byte

// Stdlib returns a copy of the built-in default command definitions.
func Stdlib() []byte {
	return append([]byte(nil), stdlib...)
}
