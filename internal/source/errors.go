// Package source fetches dependency trees from git remotes and pins them to
// exact commits.
package source

import "fmt"

// ResolutionError reports that a ref could not be turned into a commit.
type ResolutionError struct {
	Repo string
	Ref  string
	Err  error
	Hint string
}

func (e *ResolutionError) Error() string {
	ref := e.Ref
	if ref == "" {
		ref = "HEAD"
	}
	msg := fmt.Sprintf("%s: cannot resolve %s", e.Repo, ref)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
