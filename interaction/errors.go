package interaction

import "errors"

var ErrMissingPemPath = errors.New("missing pem path")

var ErrPayerNotSigner = errors.New("payer is not the signing account")

var ErrInvalidAddress = errors.New("invalid bech32 address")
