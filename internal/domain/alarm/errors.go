package alarm

import "errors"

// ErrInvalidFieldValue is returned when a setting value cannot be accepted.
// Only the offending field is rejected; other fields stay untouched.
var ErrInvalidFieldValue = errors.New("invalid field value")
