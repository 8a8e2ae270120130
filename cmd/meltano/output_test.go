package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attaxia/meltano/pkg/models"
)

func TestWriteJSON(t *testing.T) {
	t.Cleanup(func() { viper.Set("path", "") })

	t.Run("indented output", func(t *testing.T) {
		viper.Set("path", "")
		var buf bytes.Buffer
		require.NoError(t, writeJSON(&buf, map[string]string{"dialect": "postgres"}))
		assert.Equal(t, "{\n  \"dialect\": \"postgres\"\n}\n", buf.String())
	})

	t.Run("raw message passthrough", func(t *testing.T) {
		viper.Set("path", "")
		var buf bytes.Buffer
		require.NoError(t, writeJSON(&buf, json.RawMessage(`["open","closed"]`)))
		assert.JSONEq(t, `["open","closed"]`, buf.String())
	})

	t.Run("path extraction", func(t *testing.T) {
		viper.Set("path", "dialect")
		var buf bytes.Buffer
		require.NoError(t, writeJSON(&buf, map[string]string{"dialect": "postgres"}))
		assert.Equal(t, "postgres\n", buf.String())
	})

	t.Run("path extraction of array element", func(t *testing.T) {
		viper.Set("path", "0.name")
		var buf bytes.Buffer
		require.NoError(t, writeJSON(&buf, []map[string]string{{"name": "orders"}}))
		assert.Equal(t, "orders\n", buf.String())
	})

	t.Run("missing path is an error", func(t *testing.T) {
		viper.Set("path", "nope")
		var buf bytes.Buffer
		assert.Error(t, writeJSON(&buf, map[string]string{"dialect": "postgres"}))
	})
}

func TestWriteDistinctTable(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		var buf bytes.Buffer
		writeDistinctTable(&buf, "status", json.RawMessage(`["open","closed"]`))
		assert.Contains(t, buf.String(), "status")
		assert.Contains(t, buf.String(), "open")
		assert.Contains(t, buf.String(), "closed")
	})

	t.Run("object with results", func(t *testing.T) {
		var buf bytes.Buffer
		writeDistinctTable(&buf, "status", json.RawMessage(`{"field":"status","results":["open"]}`))
		assert.Contains(t, buf.String(), "open")
		assert.NotContains(t, buf.String(), "field")
	})
}

func TestWriteResultsTable(t *testing.T) {
	t.Run("sql only when not run", func(t *testing.T) {
		var buf bytes.Buffer
		writeResultsTable(&buf, &models.SQLResult{SQL: "SELECT 1"})
		assert.Equal(t, "SELECT 1\n", buf.String())
	})

	t.Run("rows rendered with headers", func(t *testing.T) {
		var buf bytes.Buffer
		writeResultsTable(&buf, &models.SQLResult{
			SQL:           "SELECT status, total FROM t",
			ColumnNames:   []string{"status", "total"},
			ColumnHeaders: []string{"Status", "Total"},
			Results: []map[string]interface{}{
				{"status": "open", "total": 42.5},
				{"status": "closed", "total": nil},
			},
		})

		out := buf.String()
		assert.Contains(t, out, "Status")
		assert.Contains(t, out, "open")
		assert.Contains(t, out, "42.5")
		assert.Contains(t, out, "NULL")
	})
}
