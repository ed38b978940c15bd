package model

import "encoding/json"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Toggle flips active and inactive.
func (s Status) Toggle() Status {
	if s == StatusActive {
		return StatusInactive
	}

	return StatusActive
}

// ParseStatus normalizes an empty status to active.
func ParseStatus(raw string) (Status, error) {
	if raw == "" {
		return StatusActive, nil
	}

	status := Status(raw)
	if !status.IsValid() {
		return "", NewInvalidInputError("status")
	}

	return status, nil
}

// UnmarshalJSON maps null or empty to active and rejects unknown values.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw == nil {
		*s = StatusActive

		return nil
	}

	status, err := ParseStatus(*raw)
	if err != nil {
		return err
	}

	*s = status

	return nil
}
