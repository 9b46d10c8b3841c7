// Package blogerr provides the structured error type (BuildError) used for
// category-based classification of build failures, plus the sentinel errors
// of the build taxonomy.
package blogerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the build taxonomy. Callers match these with errors.Is
// regardless of the wrapping BuildError.
var (
	ErrMalformedFrontMatter = errors.New("malformed front matter")
	ErrInvalidDate          = errors.New("invalid date")
	ErrDuplicatePermalink   = errors.New("duplicate permalink")
	ErrEmptySlug            = errors.New("empty slug")
	ErrNotFound             = errors.New("post not found")
	ErrDanglingReference    = errors.New("dangling series reference")
	ErrCyclicSeries         = errors.New("cyclic series")
	ErrMultiplePredecessors = errors.New("multiple predecessors")
	ErrRepositoryFrozen     = errors.New("repository is frozen")
)

// Category represents the category of a build error for classification.
type Category string

const (
	CategoryFrontMatter Category = "frontmatter"
	CategoryDate        Category = "date"
	CategoryPermalink   Category = "permalink"
	CategoryLookup      Category = "lookup"
	CategorySeries      Category = "series"
	CategoryConfig      Category = "config"
	CategoryFileSystem  Category = "filesystem"
	CategoryInternal    Category = "internal"
)

// BuildError is a structured error with category, source path, and cause.
type BuildError struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Source   string   `json:"source,omitempty"`
	Cause    error    `json:"-"`
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	switch {
	case e.Source != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Category, e.Source, e.Message, e.Cause)
	case e.Source != "":
		return fmt.Sprintf("%s: %s: %s", e.Category, e.Source, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Category, e.Message)
	}
}

// Unwrap implements error unwrapping.
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// New creates a new BuildError.
func New(category Category, message string) *BuildError {
	return &BuildError{Category: category, Message: message}
}

// Wrap creates a new BuildError that wraps an existing error.
func Wrap(err error, category Category, message string) *BuildError {
	return &BuildError{Category: category, Message: message, Cause: err}
}

// WithSource attaches the offending source path to the error.
func (e *BuildError) WithSource(source string) *BuildError {
	e.Source = source
	return e
}

// CategoryOf extracts the category from an error, or CategoryInternal when it
// is not a BuildError.
func CategoryOf(err error) Category {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Category
	}
	return CategoryInternal
}

// IsCategory checks if an error belongs to a specific category.
func IsCategory(err error, category Category) bool {
	return CategoryOf(err) == category
}
