package formdata

import "errors"

var (
	// ErrIndexOutOfRange is returned when removing a file index that does not exist.
	ErrIndexOutOfRange = errors.New("formdata: file index out of range")
	// ErrFileNotFound is returned when removing an unknown file id.
	ErrFileNotFound = errors.New("formdata: file not found")
)
