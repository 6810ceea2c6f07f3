// Package filter translates free-form key/value criteria into document-store
// queries. Normalization (key canonicalization, heuristic value coercion) is
// kept separate from execution so the heuristics are testable without a
// database.
package filter

import (
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// canonicalKeys maps lowercased incoming keys to the field names the ERP
// mirror actually stores. Unrecognized keys pass through unchanged.
var canonicalKeys = map[string]string{
	"deptcode":         "DeptCode",
	"dept":             "DeptCode",
	"status":           "Status",
	"itemtype":         "ItemType",
	"itemcode":         "ItemCode",
	"itemname":         "ItemName",
	"itemcategorycode": "ItemCategoryCode",
	"gstratecode":      "GSTRATECODE",
	"entryno":          "EntryNo",
	"trdate":           "TrDate",
	"remark":           "Remark",
	"salesrate":        "SalesRate",
	"comission":        "Comission",
	"agentrate":        "AgentRate",
	"agentrate1":       "AgentRate1",
	"source":           "source",
}

var (
	intPattern   = regexp.MustCompile(`^-?\d+$`)
	floatPattern = regexp.MustCompile(`^-?\d+\.\d+$`)
	boolPattern  = regexp.MustCompile(`^(?i:true|false)$`)
	// comma-separated values containing only digits, commas, dots, minus and
	// whitespace are treated as a list
	listPattern = regexp.MustCompile(`^[0-9,\s.-]+$`)
)

func NormalizeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if canonical, ok := canonicalKeys[k]; ok {
		return canonical
	}
	return key
}

// CoerceValue applies the type heuristics: integer-looking strings become
// int64, decimal-looking strings float64, true/false booleans, and
// comma-separated numeric-looking strings slices. Everything else passes
// through. The heuristics can misread deliberately free-text values that
// happen to look numeric; that is a known sharp edge of the contract, not
// something to fix here.
func CoerceValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = CoerceValue(e)
		}
		return out
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return ""
		}
		if strings.Contains(trimmed, ",") && listPattern.MatchString(trimmed) {
			parts := strings.Split(trimmed, ",")
			out := make([]any, 0, len(parts))
			for _, p := range parts {
				out = append(out, CoerceValue(p))
			}
			return out
		}
		if intPattern.MatchString(trimmed) {
			n, err := strconv.ParseInt(trimmed, 10, 64)
			if err == nil {
				return n
			}
		}
		if floatPattern.MatchString(trimmed) {
			f, err := strconv.ParseFloat(trimmed, 64)
			if err == nil {
				return f
			}
		}
		if boolPattern.MatchString(trimmed) {
			return strings.EqualFold(trimmed, "true")
		}
		return trimmed
	default:
		return v
	}
}

// Options are the reserved criteria keys pulled out of the request body.
type Options struct {
	SortBy string
	Order  int   // 1 ascending (default), -1 descending
	Limit  int64 // <= 0 means unbounded
}

// BuildQuery turns raw criteria into a bson filter plus extracted options.
// Arrays become $in set-membership conditions, scalars plain equality.
// Empty and nil values are dropped rather than matched literally.
func BuildQuery(criteria map[string]any) (bson.M, Options) {
	opts := Options{Order: 1}
	q := bson.M{}
	for key, raw := range criteria {
		switch key {
		case "sortBy":
			if s, ok := raw.(string); ok {
				opts.SortBy = s
			}
			continue
		case "order":
			if s, ok := raw.(string); ok && strings.EqualFold(s, "desc") {
				opts.Order = -1
			}
			continue
		case "limit":
			opts.Limit = toInt64(raw)
			continue
		}
		if raw == nil || raw == "" {
			continue
		}

		val := CoerceValue(raw)
		if val == nil || val == "" {
			continue
		}
		dbKey := NormalizeKey(key)
		if arr, ok := val.([]any); ok {
			q[dbKey] = bson.M{"$in": arr}
		} else {
			q[dbKey] = val
		}
	}
	return q, opts
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
