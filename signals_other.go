//go:build !unix

package fxkit

import "os"

func defaultSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
