package codec

import "errors"

var ErrInvalidCallbackData = errors.New("invalid callback data")

var ErrInvalidInputEncoding = errors.New("invalid input encoding")

var ErrUnknownVisibility = errors.New("unknown input visibility")
