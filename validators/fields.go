package validators

// FieldErrors collects per-field validation messages for a 422 response.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f FieldErrors) AddErr(field string, err error) {
	if err != nil {
		f[field] = append(f[field], err.Error())
	}
}

func (f FieldErrors) Any() bool {
	return len(f) > 0
}
