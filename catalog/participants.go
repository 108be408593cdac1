package catalog

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/astewartau/biql/query"
)

// loadParticipants reads participants.tsv (if present) and returns a map
// keyed by the sub entity's raw token (without the "sub-" prefix), each
// value a namespace-free attribute bag (§4.3). A missing file is not an
// error: callers get an empty map and every record's participants
// namespace resolves to null.
func loadParticipants(path string) (map[string]map[string]query.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]map[string]query.Value{}, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return map[string]map[string]query.Value{}, nil
		}
		return nil, err
	}

	result := make(map[string]map[string]query.Value)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		bag := make(map[string]query.Value, len(header))
		subKey := ""
		for i, col := range header {
			if i >= len(row) {
				bag[col] = query.Null()
				continue
			}
			val := parseParticipantValue(row[i])
			bag[col] = val
			if col == "participant_id" {
				subKey = stripSubPrefix(row[i])
			}
		}
		if subKey == "" {
			continue
		}
		result[subKey] = bag
	}
	return result, nil
}

// parseParticipantValue mirrors TSV's convention of "n/a" as the null
// token and otherwise keeps the raw text, letting query.AsNumber coerce
// numerically typed columns at comparison time (§4.3, §4.7).
func parseParticipantValue(raw string) query.Value {
	if raw == "" || raw == "n/a" {
		return query.Null()
	}
	return query.String(raw)
}

func stripSubPrefix(participantID string) string {
	const prefix = "sub-"
	if len(participantID) > len(prefix) && participantID[:len(prefix)] == prefix {
		return participantID[len(prefix):]
	}
	return participantID
}
