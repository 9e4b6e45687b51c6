package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the pipeline state of a listing on the backend.
type Status int

const (
	StatusNewListing Status = iota
	StatusInterested
	StatusApplied
	StatusInterviewing
	StatusRejected
	StatusOffer
	StatusAccepted
	StatusDeclined
)

var statusNames = [...]string{
	"new_listing",
	"interested",
	"applied",
	"interviewing",
	"rejected",
	"offer",
	"accepted",
	"declined",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) Valid() bool {
	return s >= 0 && int(s) < len(statusNames)
}

// ParseStatus accepts either the name or the numeric value.
func ParseStatus(v string) (Status, error) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return StatusNewListing, nil
	}
	for i, n := range statusNames {
		if n == v {
			return Status(i), nil
		}
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err == nil && Status(n).Valid() {
		return Status(n), nil
	}
	return 0, fmt.Errorf("unknown status %q", v)
}

func (s Status) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		st, err := ParseStatus(name)
		if err != nil {
			return err
		}
		*s = st
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if !Status(n).Valid() {
		return fmt.Errorf("invalid status %d", n)
	}
	*s = Status(n)
	return nil
}
