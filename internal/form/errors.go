package form

import (
	"errors"
	"fmt"

	"github.com/PippinModels/commercial-pricing-app/internal/model"
)

// TransitionError reports an action that is not valid in the session's state.
type TransitionError struct {
	From   State
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("form: cannot %s from state %s", e.Action, e.From)
}

// InputError reports an invalid user-supplied value.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("form: invalid %s: %s", e.Field, e.Reason)
}

// DuplicateSubmissionError reports that the audit worksheet already holds a
// row with the same type, product, channel and selection label.
type DuplicateSubmissionError struct {
	Key model.AuditKey
}

func (e *DuplicateSubmissionError) Error() string {
	return fmt.Sprintf("form: selection %s already submitted for %s / %s / %s",
		e.Key.SelectionLabel, e.Key.MappedType, e.Key.MappedProduct, e.Key.Channel)
}

// IsTransition returns true if err (or any error in its chain) is a TransitionError.
func IsTransition(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// IsInput returns true if err (or any error in its chain) is an InputError.
func IsInput(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// IsDuplicate returns true if err (or any error in its chain) is a DuplicateSubmissionError.
func IsDuplicate(err error) bool {
	var de *DuplicateSubmissionError
	return errors.As(err, &de)
}
