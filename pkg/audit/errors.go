package audit

import "fmt"

// StorageError reports a failed audit store operation.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage %s failed: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

func newStorageError(op string, cause error) *StorageError {
	return &StorageError{Op: op, Cause: cause}
}
