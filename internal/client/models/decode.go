package models

import (
	"fmt"

	"github.com/dmitrijs2005/aln/internal/common"
)

func errMissingField(name string) error {
	return fmt.Errorf("%w: missing field %q", common.ErrValidation, name)
}

// firstSet returns the first non-nil value. The backend answers in
// snake_case or camelCase depending on the endpoint, so some fields are
// decoded under both spellings.
func firstSet[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
