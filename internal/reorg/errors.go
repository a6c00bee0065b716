package reorg

import "fmt"

// UnrecoverableReorgError is returned when a reorganization reaches deeper
// than the retained block window.
type UnrecoverableReorgError struct {
	AtHeight         uint64
	Depth            uint64
	RecoverableDepth uint64
}

func (e *UnrecoverableReorgError) Error() string {
	return fmt.Sprintf("unrecoverable reorg at block %d: depth %d exceeds retained window of %d blocks",
		e.AtHeight, e.Depth, e.RecoverableDepth)
}

// NewUnrecoverableReorgError creates a new UnrecoverableReorgError.
func NewUnrecoverableReorgError(atHeight, depth, recoverableDepth uint64) error {
	return &UnrecoverableReorgError{
		AtHeight:         atHeight,
		Depth:            depth,
		RecoverableDepth: recoverableDepth,
	}
}
