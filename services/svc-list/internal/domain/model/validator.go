package model

import (
	"strconv"
)

// ParseCandidate checks that value is a structural record: an object with
// non-empty string id and name and an optional valid status.
func ParseCandidate(value any) (Record, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		if record, isRecord := value.(Record); isRecord {
			return validateRecord(record)
		}

		return Record{}, NewInvalidInputError("record")
	}

	id, ok := fields["id"].(string)
	if !ok || id == "" {
		return Record{}, NewInvalidInputError("id")
	}

	name, ok := fields["name"].(string)
	if !ok || name == "" {
		return Record{}, NewInvalidInputError("name")
	}

	status := StatusActive

	if raw, present := fields["status"]; present && raw != nil {
		str, isString := raw.(string)
		if !isString {
			return Record{}, NewInvalidInputError("status")
		}

		parsed, err := ParseStatus(str)
		if err != nil {
			return Record{}, err
		}

		status = parsed
	}

	return Record{ID: id, Name: name, Status: status}, nil
}

// ParseCandidates validates a bulk payload. Ids must be pairwise distinct.
func ParseCandidates(value any) (List, error) {
	var items []any

	switch v := value.(type) {
	case []any:
		items = v
	case List:
		items = make([]any, len(v))
		for i, record := range v {
			items[i] = record
		}
	case []Record:
		items = make([]any, len(v))
		for i, record := range v {
			items[i] = record
		}
	default:
		return nil, NewInvalidInputError("list")
	}

	list := make(List, 0, len(items))

	for _, item := range items {
		record, err := ParseCandidate(item)
		if err != nil {
			return nil, err
		}

		list = append(list, record)
	}

	if err := list.CheckUnique(); err != nil {
		return nil, err
	}

	return list, nil
}

// ParseIndex accepts base-10 integers only. Range checks, negative values
// included, belong to List.CheckIndex.
func ParseIndex(raw string) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, NewInvalidInputError("index")
	}

	return index, nil
}

func validateRecord(record Record) (Record, error) {
	if record.ID == "" {
		return Record{}, NewInvalidInputError("id")
	}

	if record.Name == "" {
		return Record{}, NewInvalidInputError("name")
	}

	status, err := ParseStatus(string(record.Status))
	if err != nil {
		return Record{}, err
	}

	record.Status = status

	return record, nil
}
