package materializer

import (
	"errors"
	"fmt"

	"github.com/sandeepkv93/cadence/internal/model"
	"github.com/sandeepkv93/cadence/internal/recurrence"
	"github.com/sandeepkv93/cadence/internal/storage"
)

var (
	// ErrNotFound matches both this package's lookups and storage.ErrNotFound.
	ErrNotFound      = fmt.Errorf("materializer: %w", storage.ErrNotFound)
	ErrAlreadyClosed = errors.New("materializer: occurrence already closed")
)

// StorageError wraps a failure of the storage collaborator. It is never retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("materializer: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func classified(err error) bool {
	var se *StorageError
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAlreadyClosed) ||
		errors.Is(err, model.ErrInvalidConfiguration) ||
		errors.Is(err, model.ErrInvalidStatus) ||
		errors.Is(err, recurrence.ErrInvalidMode) ||
		errors.As(err, &se)
}

// storageErr maps a repository error onto the package taxonomy.
func storageErr(op string, err error) error {
	if err == nil || classified(err) {
		return err
	}
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return &StorageError{Op: op, Err: err}
}
