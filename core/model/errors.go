package model

import "fmt"

// ErrAlreadyInitialized is returned by DependencyGraph.Initialize on
// re-entry; the state machine only permits a single initializing pass.
var ErrAlreadyInitialized = fmt.Errorf("depgraph: already initialized")

// ExtractorFailureError wraps a dependency-extractor error with the
// filename it was extracting when it failed.
type ExtractorFailureError struct {
	FilePath string
	Err      error
}

func (e *ExtractorFailureError) Error() string {
	return fmt.Sprintf("depgraph: extractor failed for %s: %v", e.FilePath, e.Err)
}

func (e *ExtractorFailureError) Unwrap() error {
	return e.Err
}

// CacheIOFailureError wraps a cache load/save error with the path that
// could not be read or written.
type CacheIOFailureError struct {
	Path string
	Err  error
}

func (e *CacheIOFailureError) Error() string {
	return fmt.Sprintf("depgraph: cache IO failed for %s: %v", e.Path, e.Err)
}

func (e *CacheIOFailureError) Unwrap() error {
	return e.Err
}

// InvalidPathError is returned when an entry-file path cannot be made
// absolute against the configured working directory.
type InvalidPathError struct {
	Path string
	Err  error
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("depgraph: invalid path %q: %v", e.Path, e.Err)
}

func (e *InvalidPathError) Unwrap() error {
	return e.Err
}
