package epg

import "errors"

// Domain errors for guide assembly.
var (
	ErrForeignProgram   = errors.New("program does not belong to the listed channel")
	ErrDuplicateChannel = errors.New("channel listed more than once")
)
