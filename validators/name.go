package validators

import (
	"errors"
	"strings"
)

var (
	ErrNameEmpty   = errors.New("no name provided")
	ErrNameTooLong = errors.New("name can't be longer than 255 characters")
)

func NameValidator(n string) error {
	if strings.TrimSpace(n) == "" {
		return ErrNameEmpty
	}

	if len(n) > 255 {
		return ErrNameTooLong
	}

	return nil
}
