// Package models provides data structures for the Meltano semantic-layer API.
package models

// Design represents a named semantic-layer query definition belonging to
// a model. The backend can render a design to SQL.
type Design struct {
	Name         string `json:"name"`
	Label        string `json:"label,omitempty"`
	Description  string `json:"description,omitempty"`
	From         string `json:"from,omitempty"`
	RelatedTable *Table `json:"related_table,omitempty"`
	Joins        []Join `json:"joins,omitempty"`
}

// Join describes a join between a design's base table and a related table.
type Join struct {
	Name         string `json:"name"`
	Label        string `json:"label,omitempty"`
	RelatedTable *Table `json:"related_table,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	SQLOn        string `json:"sql_on,omitempty"`
}

// Table represents a semantic-layer table definition.
type Table struct {
	Name         string      `json:"name"`
	SQLTableName string      `json:"sql_table_name,omitempty"`
	Columns      []Column    `json:"columns,omitempty"`
	Aggregates   []Aggregate `json:"aggregates,omitempty"`
	Timeframes   []Timeframe `json:"timeframes,omitempty"`
}

// Column represents a selectable column of a table.
type Column struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	SQL         string `json:"sql,omitempty"`
	PrimaryKey  bool   `json:"primary_key,omitempty"`
	Hidden      bool   `json:"hidden,omitempty"`
}

// Aggregate represents an aggregate measure of a table.
type Aggregate struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	SQL         string `json:"sql,omitempty"`
}

// Timeframe represents a time dimension of a table.
type Timeframe struct {
	Name    string   `json:"name"`
	Label   string   `json:"label,omitempty"`
	Periods []Period `json:"periods,omitempty"`
}

// Period represents a selectable period within a timeframe.
type Period struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Part     string `json:"part,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

// Model represents a semantic-layer model and the designs it contains.
type Model struct {
	Name    string      `json:"name"`
	Label   string      `json:"label,omitempty"`
	Plugin  string      `json:"plugin,omitempty"`
	Designs []DesignRef `json:"designs,omitempty"`
}

// DesignRef is a lightweight reference to a design within a model index.
type DesignRef struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
}

// ModelIndex maps model names to their definitions.
type ModelIndex map[string]Model

// QueryPayload describes the query a caller wants the backend to render
// to SQL for a given design.
type QueryPayload struct {
	Table      string         `json:"table,omitempty"`
	Columns    []string       `json:"columns"`
	Aggregates []string       `json:"aggregates"`
	Timeframes []TimeframeSel `json:"timeframes,omitempty"`
	Joins      []JoinSel      `json:"joins,omitempty"`
	Order      *Order         `json:"order,omitempty"`
	Limit      int            `json:"limit,omitempty"`
	Filters    *Filters       `json:"filters,omitempty"`
	Run        bool           `json:"run"`
	Loader     string         `json:"loader,omitempty"`
}

// TimeframeSel selects a timeframe and the periods to expand.
type TimeframeSel struct {
	Name    string   `json:"name"`
	Periods []Period `json:"periods,omitempty"`
}

// JoinSel selects columns and aggregates from a joined table.
type JoinSel struct {
	Name       string         `json:"name"`
	Columns    []string       `json:"columns,omitempty"`
	Aggregates []string       `json:"aggregates,omitempty"`
	Timeframes []TimeframeSel `json:"timeframes,omitempty"`
}

// Order describes the result ordering of a query.
type Order struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

// Filters groups column and aggregate filter expressions.
type Filters struct {
	Columns    []FilterExpression `json:"columns,omitempty"`
	Aggregates []FilterExpression `json:"aggregates,omitempty"`
}

// FilterExpression is a single filter applied to a column or aggregate.
type FilterExpression struct {
	TableName  string      `json:"table_name,omitempty"`
	Name       string      `json:"name"`
	Expression string      `json:"expression"`
	Value      interface{} `json:"value,omitempty"`
	IsActive   bool        `json:"is_active"`
}

// SQLResult is the backend's answer to a compute-SQL request: the
// generated SQL plus, when the query was run, the result set.
type SQLResult struct {
	SQL           string                   `json:"sql"`
	Results       []map[string]interface{} `json:"results,omitempty"`
	ColumnHeaders []string                 `json:"column_headers,omitempty"`
	ColumnNames   []string                 `json:"names,omitempty"`
	Aggregates    []string                 `json:"aggregates,omitempty"`
	Error         string                   `json:"error,omitempty"`
}

// DialectResult carries the SQL dialect the backend targets for a model.
type DialectResult struct {
	Dialect string `json:"dialect"`
}

// DistinctRequest asks for the distinct values of a single field.
type DistinctRequest struct {
	Field string `json:"field"`
}

// Report is a saved report definition: a design plus the query payload
// and chart type the UI should restore.
type Report struct {
	ID           string        `json:"id,omitempty"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug,omitempty"`
	Model        string        `json:"model"`
	Design       string        `json:"design"`
	ChartType    string        `json:"chart_type,omitempty"`
	QueryPayload *QueryPayload `json:"query_payload,omitempty"`
	Version      string        `json:"version,omitempty"`
}
