package registrar

import "fmt"

// ValidationError rejects a repository name that is not owner/repo.
type ValidationError struct {
	Name string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid repository name %q, expected owner/repo", e.Name)
}

// NotFoundError reports that the repository does not exist upstream.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("repository %q not found on GitHub", e.Name)
}

// IngestError carries the diagnostic output of a failed ingestion run;
// that output is what the user sees.
type IngestError struct {
	Output string
	Err    error
}

func (e *IngestError) Error() string {
	if e.Output != "" {
		return e.Output
	}
	return fmt.Sprintf("ingestion failed: %v", e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}
