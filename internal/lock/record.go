package lock

import (
	"fmt"
	"strings"
)

const (
	revPrefix  = "rev="
	hashPrefix = "sha256="
)

// Entry is the persisted state of one dependency: the exact revision it was
// installed at and the content hash of its tree at that revision.
type Entry struct {
	Revision string
	Hash     string
}

// Format renders e as a lock record: exactly two lines, rev= then sha256=.
func (e Entry) Format() []byte {
	return []byte(revPrefix + e.Revision + "\n" + hashPrefix + e.Hash + "\n")
}

// MalformedError describes a lock record that is not exactly two recognized,
// non-empty fields.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return "malformed lock record: " + e.Reason
}

// Parse strictly decodes a lock record. Anything other than one rev= line
// and one sha256= line, both non-empty, is rejected as a whole.
func Parse(data []byte) (Entry, error) {
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return Entry{}, &MalformedError{Reason: "record is empty"}
	}
	lines := strings.Split(text, "\n")
	if len(lines) != 2 {
		return Entry{}, &MalformedError{Reason: fmt.Sprintf("record must have exactly two lines, found %d", len(lines))}
	}

	var e Entry
	var haveRev, haveHash bool
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case strings.HasPrefix(line, revPrefix) && !haveRev:
			e.Revision = strings.TrimPrefix(line, revPrefix)
			haveRev = true
		case strings.HasPrefix(line, hashPrefix) && !haveHash:
			e.Hash = strings.TrimPrefix(line, hashPrefix)
			haveHash = true
		default:
			return Entry{}, &MalformedError{Reason: fmt.Sprintf("unrecognized line %q", line)}
		}
	}

	if e.Revision == "" || e.Hash == "" {
		return Entry{}, &MalformedError{Reason: "record is missing required fields"}
	}
	return e, nil
}
