package model

import (
	"encoding/json"
	"slices"
)

type Record struct {
	ID     string `json:"id" bson:"id" db:"id"`
	Name   string `json:"name" bson:"name" db:"name"`
	Status Status `json:"status" bson:"status" db:"status"`
}

func NewRecord(id, name string) Record {
	return Record{
		ID:     id,
		Name:   name,
		Status: StatusActive,
	}
}

func (r Record) IsActive() bool {
	return r.Status == StatusActive
}

// Normalize fills in the active status for records loaded from untagged data.
func (r Record) Normalize() Record {
	if r.Status == "" {
		r.Status = StatusActive
	}

	return r
}

// UnmarshalJSON decodes a stored record, defaulting a missing status to active.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record

	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	*r = Record(decoded).Normalize()

	return nil
}

// List is ordered; mutations address records by position.
type List []Record

func (l List) Len() int {
	return len(l)
}

func (l List) Clone() List {
	if l == nil {
		return List{}
	}

	return slices.Clone(l)
}

// IndexOf returns the position of the record with id, or -1.
func (l List) IndexOf(id string) int {
	return slices.IndexFunc(l, func(r Record) bool { return r.ID == id })
}

func (l List) Active() List {
	active := make(List, 0, len(l))

	for _, record := range l {
		if record.IsActive() {
			active = append(active, record)
		}
	}

	return active
}

func (l List) Normalize() List {
	normalized := make(List, len(l))

	for i, record := range l {
		normalized[i] = record.Normalize()
	}

	return normalized
}

// CheckIndex validates an ordinal position against the list length.
func (l List) CheckIndex(index int) error {
	if index < 0 || index >= len(l) {
		return NewIndexOutOfRangeError(index, len(l))
	}

	return nil
}

// CheckUnique returns a DuplicateIDError for the first repeated id.
func (l List) CheckUnique() error {
	seen := make(map[string]struct{}, len(l))

	for _, record := range l {
		if _, ok := seen[record.ID]; ok {
			return NewDuplicateIDError(record.ID)
		}

		seen[record.ID] = struct{}{}
	}

	return nil
}

// Snapshot is the result of a read. Degraded marks an empty list that stands
// in for a failed backend read rather than a genuinely empty collection.
type Snapshot struct {
	List     List
	Degraded bool
	Cause    error
}

func (s Snapshot) IsDegraded() bool {
	return s.Degraded
}
