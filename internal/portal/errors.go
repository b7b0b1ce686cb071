package portal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUploadInFlight : Submit called while the same control is still submitting
	ErrUploadInFlight  = errors.New("upload already in progress")
	ErrNoSelection     = errors.New("no category or file selected")
	ErrUnknownDocument = errors.New("document not in the current list")
)

// ValidationError : local failure, nothing was sent to the server.
// Fields are keyed "field" or "list.index.field".
type ValidationError struct {
	Fields map[string]string
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Err != nil {
			return e.Err.Error()
		}
		return "validation failed"
	}
	keys := sortedKeys(e.Fields)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// RemoteError : a server call failed and local state was rolled back
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// sortedKeys : stable order for printing field errors
func sortedKeys(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
