// Keydump puts the terminal in raw mode and shows every key it decodes, until
// Esc is pressed. With -replay, it shows the keys recorded with -record
// instead.
package main

import (
	"os"

	"src.rawkey.dev/pkg/keydump"
	"src.rawkey.dev/pkg/prog"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(keydump.ReplayProgram{}, keydump.Program{})))
}
