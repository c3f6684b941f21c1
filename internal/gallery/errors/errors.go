package errors

import "errors"

var (
	ErrNoFiles = errors.New("please choose at least one image")

	ErrNoSelection = errors.New("no images selected")

	ErrURLRequired = errors.New("image url is required")

	ErrEmptyFile = errors.New("file is empty")

	ErrUnsupportedType = errors.New("file is not an image")
)
