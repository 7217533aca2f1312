package validators

import "errors"

var (
	ErrAsteroidIDEmpty   = errors.New("no asteroid ID provided")
	ErrAsteroidIDTooLong = errors.New("asteroid ID can't be longer than 255 characters")
	ErrFieldTooLong      = errors.New("value can't be longer than 255 characters")
)

func AsteroidIDValidator(id string) error {
	if id == "" {
		return ErrAsteroidIDEmpty
	}

	if len(id) > 255 {
		return ErrAsteroidIDTooLong
	}

	return nil
}

// OptionalFieldValidator checks the short display fields (type, distance,
// value) which may be absent but are capped when present.
func OptionalFieldValidator(v *string) error {
	if v == nil {
		return nil
	}

	if len(*v) > 255 {
		return ErrFieldTooLong
	}

	return nil
}
