//go:build unix

package fxkit

import (
	"os"
	"syscall"
)

func defaultSignals() []os.Signal {
	return []os.Signal{
		os.Interrupt,
		syscall.SIGTERM,
	}
}
