package main

import (
	"fmt"
	"os"
)

/*
logger writes progress messages to stderr when enabled. It satisfies
the Logf hook the library packages report their diagnostics on, so a
disabled logger silently drops everything the commands and the
training code emit.
*/
type logger bool

func (rcc *rootCmdConfig) Logf(format string, a ...interface{}) {
	logger(rcc.verbose).Logf(format, a...)
}

func (l logger) Logf(format string, a ...interface{}) {
	if !l {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", a...)
}
