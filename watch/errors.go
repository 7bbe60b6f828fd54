package watch

import "errors"

// ErrPathNotFound and ErrAccessDenied are the two fatal initialization
// errors that terminate the adapter before it ever reaches WATCHING.
var (
	ErrPathNotFound = errors.New("watch: path not found")
	ErrAccessDenied = errors.New("watch: access denied")
)
