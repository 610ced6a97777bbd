package rlog

// Namer maps a computed default backup name to an actual name. It must be
// pure and deterministic: the rotation engine may call it more than once
// for the same input while shifting backups.
type Namer func(defaultName string) string
