package pipeline

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet   = errors.New("p must be set")
	ErrDescriptorMustBeSet = errors.New("descriptor must be set")
	ErrPipelineFinalized   = errors.New("pipeline is already finalized")
	ErrUnknownProperty     = errors.New("unknown property")
	ErrPropertyType        = errors.New("wrong property type")
	ErrInvalidName         = errors.New("invalid descriptor name")
	ErrDuplicateName       = errors.New("duplicate descriptor name")
	ErrWrongKind           = errors.New("wrong descriptor kind")
	ErrHandleNotFound      = errors.New("data handle not found")
	ErrAmbiguousHandle     = errors.New("ambiguous data handle")
	ErrEmptyPath           = errors.New("path must not be empty")
	ErrUnknownStage        = errors.New("unknown stage")
)

// IssueCode classifies a data-flow problem found by Validate.
type IssueCode string

const (
	// DanglingPath is a reader whose path is written by no stage.
	DanglingPath IssueCode = "dangling-path"
	// ReadBeforeWrite is a reader whose path is only written by a later stage.
	ReadBeforeWrite IssueCode = "read-before-write"
	// DuplicateWriter is a path written by more than one stage.
	DuplicateWriter IssueCode = "duplicate-writer"
	// ServiceOrder is a service registered before a service it requires.
	ServiceOrder IssueCode = "service-order"
	// MissingService is a component requiring a service that is never registered.
	MissingService IssueCode = "missing-service"
)

// Issue is one problem found in the data flow or service order of a pipeline.
type Issue struct {
	Code IssueCode
	// Descriptor is the name of the stage or service the issue is attached to.
	Descriptor string
	// Subject is the path or service type concerned.
	Subject string
	Detail  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s %q: %s", i.Code, i.Descriptor, i.Subject, i.Detail)
}

// ValidationError is returned by Finalize in strict mode.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, issue.String())
	}

	return fmt.Sprintf("pipeline has %d data-flow issue(s): %s", len(e.Issues), strings.Join(msgs, "; "))
}
