package model

import "errors"

// ErrValidation marks input the engine refuses: empty or overlong
// activity names, unknown catalog entries, unsupported actions. Absent
// sessions and empty days are states, not errors, and have no sentinel.
var ErrValidation = errors.New("validation error")
