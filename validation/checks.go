package validation

import (
	"strconv"
	"strings"

	apperrors "github.com/kbukum/voicegate/errors"
)

// FieldError is one failed check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Checks collects field errors. Methods chain.
type Checks struct {
	errs []FieldError
}

// New returns an empty Checks.
func New() *Checks {
	return &Checks{}
}

// Add records a failure for field.
func (c *Checks) Add(field, message string) *Checks {
	c.errs = append(c.errs, FieldError{Field: field, Message: message})
	return c
}

// Required fails when value is blank.
func (c *Checks) Required(field, value string) *Checks {
	if strings.TrimSpace(value) == "" {
		c.Add(field, "is required")
	}
	return c
}

// Min fails when value < min.
func (c *Checks) Min(field string, value, min int) *Checks {
	if value < min {
		c.Add(field, "must be at least "+strconv.Itoa(min))
	}
	return c
}

// Range fails when value is outside [min, max].
func (c *Checks) Range(field string, value, min, max int) *Checks {
	if value < min || value > max {
		c.Add(field, "must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
	}
	return c
}

// Errors returns the recorded failures.
func (c *Checks) Errors() []FieldError {
	return c.errs
}

// Err returns nil when every check passed, otherwise a VALIDATION_ERROR
// AppError listing the fields.
func (c *Checks) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	messages := make([]string, 0, len(c.errs))
	for _, e := range c.errs {
		messages = append(messages, e.Field+": "+e.Message)
	}
	return apperrors.Validation(strings.Join(messages, "; ")).WithDetail("fields", c.errs)
}

// IntParam parses an optional integer parameter. An empty raw yields def.
func (c *Checks) IntParam(field, raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.Add(field, "must be an integer")
		return def
	}
	return n
}
