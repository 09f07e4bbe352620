package execution

import "github.com/oklog/ulid/v2"

// NewHandle returns a fresh correlation handle. Handles are not derived from request
// content, so identical submissions get distinct handles.
func NewHandle() string {
	return ulid.Make().String()
}
