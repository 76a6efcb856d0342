package rowstore

import (
	"errors"
	"fmt"
)

// NotFoundError reports a missing document or worksheet.
type NotFoundError struct {
	Document  string
	Worksheet string
}

func (e *NotFoundError) Error() string {
	if e.Worksheet == "" {
		return fmt.Sprintf("rowstore: document %q not found", e.Document)
	}
	return fmt.Sprintf("rowstore: worksheet %q not found in document %q", e.Worksheet, e.Document)
}

// ReadError wraps a failure reading from the remote store.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("rowstore: %s: %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError wraps a failure writing to the remote store. Writes are never
// retried automatically.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("rowstore: %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if err (or any error in its chain) is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsRead returns true if err (or any error in its chain) is a ReadError.
func IsRead(err error) bool {
	var re *ReadError
	return errors.As(err, &re)
}

// IsWrite returns true if err (or any error in its chain) is a WriteError.
func IsWrite(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}
