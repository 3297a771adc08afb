package lock

import "fmt"

// Outcome classifies a strict verification.
type Outcome int

const (
	Match Outcome = iota
	Missing
	Malformed
	RevisionMismatch
	HashMismatch
)

func (o Outcome) String() string {
	switch o {
	case Match:
		return "match"
	case Missing:
		return "missing"
	case Malformed:
		return "malformed"
	case RevisionMismatch:
		return "revision mismatch"
	case HashMismatch:
		return "hash mismatch"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Verification is the structured result of Store.VerifyStrict.
type Verification struct {
	Name     string
	Outcome  Outcome
	Detail   string
	Expected Entry
	Found    Entry // zero unless the record parsed
}

// OK reports whether the record matched.
func (v Verification) OK() bool {
	return v.Outcome == Match
}

// ExpectedValue and FoundValue return the pair of values that disagreed.
func (v Verification) ExpectedValue() string {
	if v.Outcome == HashMismatch {
		return v.Expected.Hash
	}
	return v.Expected.Revision
}

func (v Verification) FoundValue() string {
	switch v.Outcome {
	case HashMismatch:
		return v.Found.Hash
	case RevisionMismatch:
		return v.Found.Revision
	}
	return v.Detail
}

// Err returns nil for a match and a *MismatchError otherwise.
func (v Verification) Err() error {
	if v.OK() {
		return nil
	}
	return &MismatchError{
		Name:     v.Name,
		Outcome:  v.Outcome,
		Expected: v.ExpectedValue(),
		Found:    v.FoundValue(),
	}
}

// MismatchError reports that a dependency's tree no longer matches its lock
// record. It is the one failure that must stop a whole install.
type MismatchError struct {
	Name     string
	Outcome  Outcome
	Expected string
	Found    string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("lock mismatch for %s: %s (expected %s, found %s)", e.Name, e.Outcome, e.Expected, e.Found)
}
