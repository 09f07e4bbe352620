package codec

import (
	"fmt"
	"unicode/utf8"
)

// DecodeOutput validates committed outputs as strict UTF-8 text. Invalid sequences are
// rejected, never repaired.
func DecodeOutput(committedOutputs []byte) (string, error) {
	if !utf8.Valid(committedOutputs) {
		return "", fmt.Errorf("%w: committed outputs are not valid utf-8", ErrInvalidCallbackData)
	}
	return string(committedOutputs), nil
}
