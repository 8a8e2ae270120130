package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesign_Decode(t *testing.T) {
	payload := `{
		"name": "orders",
		"label": "Orders",
		"from": "orders",
		"related_table": {
			"name": "orders",
			"sql_table_name": "analytics.orders",
			"columns": [
				{"name": "status", "label": "Status", "type": "string", "sql": "{{table}}.status"},
				{"name": "id", "type": "string", "primary_key": true, "hidden": true}
			],
			"aggregates": [
				{"name": "total_revenue", "type": "sum", "sql": "{{table}}.amount"}
			]
		},
		"joins": [
			{"name": "customers", "relationship": "many_to_one", "sql_on": "orders.customer_id = customers.id"}
		]
	}`

	var design Design
	require.NoError(t, json.Unmarshal([]byte(payload), &design))

	assert.Equal(t, "orders", design.Name)
	require.NotNil(t, design.RelatedTable)
	assert.Equal(t, "analytics.orders", design.RelatedTable.SQLTableName)
	require.Len(t, design.RelatedTable.Columns, 2)
	assert.True(t, design.RelatedTable.Columns[1].PrimaryKey)
	assert.True(t, design.RelatedTable.Columns[1].Hidden)
	require.Len(t, design.Joins, 1)
	assert.Equal(t, "many_to_one", design.Joins[0].Relationship)
}

func TestDistinctRequest_Encode(t *testing.T) {
	body, err := json.Marshal(DistinctRequest{Field: "status"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"field":"status"}`, string(body))
}

func TestQueryPayload_Encode(t *testing.T) {
	payload := QueryPayload{
		Table:      "orders",
		Columns:    []string{"status"},
		Aggregates: []string{"total_revenue"},
		Order:      &Order{Column: "total_revenue", Direction: "desc"},
		Limit:      50,
		Run:        true,
	}

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "orders", decoded["table"])
	assert.Equal(t, []interface{}{"status"}, decoded["columns"])
	assert.Equal(t, true, decoded["run"])

	// run must always be present so the backend knows whether to execute
	payload.Run = false
	body, err = json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"run":false`)
}

func TestSQLResult_Decode(t *testing.T) {
	payload := `{
		"sql": "SELECT status, SUM(amount) AS total_revenue FROM analytics.orders GROUP BY status",
		"results": [{"status": "open", "total_revenue": 42.5}],
		"column_headers": ["Status", "Total Revenue"],
		"names": ["status", "total_revenue"],
		"aggregates": ["total_revenue"]
	}`

	var result SQLResult
	require.NoError(t, json.Unmarshal([]byte(payload), &result))

	assert.Contains(t, result.SQL, "GROUP BY status")
	require.Len(t, result.Results, 1)
	assert.Equal(t, "open", result.Results[0]["status"])
	assert.Equal(t, []string{"Status", "Total Revenue"}, result.ColumnHeaders)
	assert.Equal(t, []string{"status", "total_revenue"}, result.ColumnNames)
}

func TestReport_Decode(t *testing.T) {
	payload := `{
		"id": "1ab2",
		"name": "Revenue by status",
		"slug": "revenue-by-status",
		"model": "ecommerce",
		"design": "orders",
		"chart_type": "BarChart",
		"query_payload": {"columns": ["status"], "aggregates": ["total_revenue"], "run": true}
	}`

	var report Report
	require.NoError(t, json.Unmarshal([]byte(payload), &report))

	assert.Equal(t, "revenue-by-status", report.Slug)
	assert.Equal(t, "ecommerce", report.Model)
	require.NotNil(t, report.QueryPayload)
	assert.Equal(t, []string{"status"}, report.QueryPayload.Columns)
}
