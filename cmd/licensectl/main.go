// Command licensectl signs, inspects and verifies license tokens.
//
// Keys and algorithm come from flags or LICENSE_* environment variables, which
// may also be placed in a .env file. Exit status is 0 on success, 1 when a
// license is rejected (verify, match) and 2 for any other error.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	a := newApp(os.Stdout, os.Stderr)
	err := newRootCmd(a).Execute()
	a.close()

	switch {
	case err == nil:
	case errors.Is(err, errLicenseInvalid):
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}
