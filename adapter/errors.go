package adapter

import "errors"

var ErrAmbiguousInputs = errors.New("input and inputs cannot both be set")
