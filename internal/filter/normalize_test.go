package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "DeptCode", NormalizeKey("deptcode"))
	assert.Equal(t, "DeptCode", NormalizeKey("DEPTCODE"))
	assert.Equal(t, "DeptCode", NormalizeKey(" Dept "))
	assert.Equal(t, "GSTRATECODE", NormalizeKey("gstRateCode"))
	assert.Equal(t, "ItemCategoryCode", NormalizeKey("itemcategorycode"))
	// unrecognized keys pass through untouched, original casing kept
	assert.Equal(t, "WarehouseZone", NormalizeKey("WarehouseZone"))
}

func TestCoerceValue(t *testing.T) {
	assert.Equal(t, int64(5), CoerceValue("5"))
	assert.Equal(t, int64(-12), CoerceValue(" -12 "))
	assert.Equal(t, 3.14, CoerceValue("3.14"))
	assert.Equal(t, true, CoerceValue("TRUE"))
	assert.Equal(t, false, CoerceValue("false"))
	assert.Equal(t, "", CoerceValue("  "))
	assert.Equal(t, "B-12/4", CoerceValue("B-12/4"))
	assert.Equal(t, "route 5", CoerceValue("route 5"))

	// comma-separated numeric-looking strings become lists
	assert.Equal(t, []any{int64(37), int64(34), int64(38)}, CoerceValue("37,34,38"))
	assert.Equal(t, []any{1.5, int64(2)}, CoerceValue("1.5, 2"))
	// free text with commas stays a string
	assert.Equal(t, "milk, fresh", CoerceValue("milk, fresh"))

	// arrays coerce element-wise
	assert.Equal(t, []any{int64(1), "x", true}, CoerceValue([]any{"1", "x", "true"}))

	// non-strings pass through
	assert.Equal(t, 7, CoerceValue(7))
	assert.Equal(t, 2.5, CoerceValue(2.5))
}

func TestBuildQuery(t *testing.T) {
	q, opts := BuildQuery(map[string]any{
		"deptcode": "37,34",
		"status":   "0",
		"itemname": "Basundi",
		"sortBy":   "salesrate",
		"order":    "DESC",
		"limit":    "25",
		"remark":   "",  // dropped
		"trdate":   nil, // dropped
	})

	assert.Equal(t, bson.M{
		"DeptCode": bson.M{"$in": []any{int64(37), int64(34)}},
		"Status":   int64(0),
		"ItemName": "Basundi",
	}, q)
	assert.Equal(t, "salesrate", opts.SortBy)
	assert.Equal(t, -1, opts.Order)
	assert.Equal(t, int64(25), opts.Limit)
}

func TestBuildQueryDefaults(t *testing.T) {
	q, opts := BuildQuery(map[string]any{})
	assert.Empty(t, q)
	assert.Equal(t, 1, opts.Order)
	assert.Equal(t, "", opts.SortBy)
	assert.Equal(t, int64(0), opts.Limit)
}

func TestBuildQueryArrayCriteria(t *testing.T) {
	q, _ := BuildQuery(map[string]any{"DeptCode": []any{37.0, 34.0}})
	require.Contains(t, q, "DeptCode")
	assert.Equal(t, bson.M{"$in": []any{37.0, 34.0}}, q["DeptCode"])
}

// A lowercase string key with a numeric string value must build the same
// query as the canonical key with a native number.
func TestBuildQueryEquivalence(t *testing.T) {
	q1, _ := BuildQuery(map[string]any{"deptcode": "5"})
	q2, _ := BuildQuery(map[string]any{"DeptCode": int64(5)})
	assert.Equal(t, q2, q1)
}
