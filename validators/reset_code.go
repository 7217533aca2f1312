package validators

import "errors"

var (
	ErrResetCodeEmpty  = errors.New("no reset code provided")
	ErrResetCodeLength = errors.New("reset code must be 6 digits")
)

func ResetCodeValidator(c string) error {
	if c == "" {
		return ErrResetCodeEmpty
	}

	if len(c) != 6 {
		return ErrResetCodeLength
	}

	return nil
}
