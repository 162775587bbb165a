// Command memora runs the album creation and service request flows in the
// terminal, manages the local sign-in and serves the intake API.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, nil).Execute(); err != nil {
		os.Exit(1)
	}
}
