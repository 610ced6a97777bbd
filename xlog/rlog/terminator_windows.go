//go:build windows

package rlog

func defaultTerminator() []byte { return []byte("\r\n") }
