package main

import "github.com/yyyoichi/stegano_lsb/cmd/steganohide/cmd"

var (
	// Version is the version of the binary.
	Version = "0.0.0"
)

func main() {
	cmd.Version = Version
	cmd.Execute()
}
