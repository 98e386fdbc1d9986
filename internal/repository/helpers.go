package repository

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/oxidb"
	"github.com/parisxmas/oxikpi/internal/service"
)

// normalizeID moves OxiDB's auto-increment _id into key as a string.
func normalizeID(doc map[string]any, key string) {
	id, ok := doc["_id"]
	if !ok {
		return
	}
	delete(doc, "_id")
	switch v := id.(type) {
	case float64:
		doc[key] = strconv.FormatFloat(v, 'f', 0, 64)
	case int:
		doc[key] = strconv.Itoa(v)
	case string:
		doc[key] = v
	default:
		doc[key] = fmt.Sprint(v)
	}
}

// extractID gets the inserted document ID from an OxiDB insert response.
func extractID(result map[string]any) string {
	if id, ok := result["id"]; ok {
		switch v := id.(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', 0, 64)
		}
	}
	return ""
}

// toNumericID converts a string ID to float64 for OxiDB queries.
func toNumericID(id string) any {
	if n, err := strconv.ParseFloat(id, 64); err == nil {
		return n
	}
	return id
}

func byID(id string) map[string]any {
	return map[string]any{"_id": toNumericID(id)}
}

// toDoc converts a model to an OxiDB document, dropping its id under key.
func toDoc(v any, key string) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal document")
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "unmarshal document")
	}
	delete(doc, key)
	delete(doc, "_id")
	return doc, nil
}

// fromDoc decodes an OxiDB document into out, exposing _id under key.
func fromDoc(doc map[string]any, key string, out any) error {
	normalizeID(doc, key)
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal doc")
	}
	return errors.Wrap(json.Unmarshal(data, out), "unmarshal doc")
}

// decodeAll decodes a result set, skipping documents that no longer fit T.
func decodeAll[T any](docs []map[string]any, key string) []T {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := fromDoc(d, key, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// insertErr maps a unique index violation to service.ErrConflict.
func insertErr(err error, what string) error {
	if oxidb.IsDuplicate(err) {
		return errors.Wrap(service.ErrConflict, what)
	}
	return errors.Wrap(err, what)
}
