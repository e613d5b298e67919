package datapost

import (
	"errors"
	"fmt"

	"datapost/internal/codec"
	"datapost/internal/repository"
)

var (
	ErrMalformedIdentifier = errors.New("malformed filename: expected <name>.<type>")
	ErrUnknownType         = errors.New("unknown file type")
	ErrTypeRegistered      = errors.New("file type already registered")
	ErrNotFound            = errors.New("file not found")
	ErrAmbiguousMatch      = errors.New("filename matches more than one file")
	ErrStore               = errors.New("record store failure")

	// Codec failures pass through Document unchanged.
	ErrDecode = codec.ErrDecode
	ErrEncode = codec.ErrEncode
)

// StoreError classifies a Record Store error: missing records become
// ErrNotFound, everything else is wrapped in ErrStore. The original error
// stays reachable through errors.Is/As.
func StoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrStore, err)
}
