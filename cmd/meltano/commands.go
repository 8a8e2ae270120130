package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/attaxia/meltano/pkg/models"
)

func newModelCmd() *cobra.Command {
	modelCmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect semantic-layer models",
	}

	modelCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available models and their designs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, stop, err := newAPIClient()
			if err != nil {
				return err
			}
			defer stop()

			index, err := api.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), index)
		},
	})

	return modelCmd
}

func newDesignCmd() *cobra.Command {
	designCmd := &cobra.Command{
		Use:   "design",
		Short: "Inspect design definitions",
	}

	designCmd.AddCommand(&cobra.Command{
		Use:   "get <model> <design>",
		Short: "Fetch a design definition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, stop, err := newAPIClient()
			if err != nil {
				return err
			}
			defer stop()

			design, err := api.GetDesign(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), design)
		},
	})

	return designCmd
}

func newTableCmd() *cobra.Command {
	tableCmd := &cobra.Command{
		Use:   "table",
		Short: "Inspect table definitions",
	}

	getCmd := &cobra.Command{
		Use:   "get <table>",
		Short: "Fetch a table definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, stop, err := newAPIClient()
			if err != nil {
				return err
			}
			defer stop()

			table, err := api.GetTable(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if format, _ := cmd.Flags().GetString("format"); format == "table" {
				writeColumnsTable(cmd.OutOrStdout(), table)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), table)
		},
	}
	getCmd.Flags().String("format", "json", "output format (json, table)")
	tableCmd.AddCommand(getCmd)

	return tableCmd
}

func newReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Manage saved reports",
	}

	reportCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, stop, err := newAPIClient()
			if err != nil {
				return err
			}
			defer stop()

			reports, err := api.ListReports(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), reports)
		},
	})

	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Save a report definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := readReportFile(cmd)
			if err != nil {
				return err
			}

			api, stop, err := newAPIClient()
			if err != nil {
				return err
			}
			defer stop()

			saved, err := api.SaveReport(cmd.Context(), report)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), saved)
		},
	}
	saveCmd.Flags().StringP("file", "f", "", "report definition file (JSON)")
	_ = saveCmd.MarkFlagRequired("file")
	reportCmd.AddCommand(saveCmd)

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update an existing report definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := readReportFile(cmd)
			if err != nil {
				return err
			}

			api, stop, err := newAPIClient()
			if err != nil {
				return err
			}
			defer stop()

			updated, err := api.UpdateReport(cmd.Context(), report)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), updated)
		},
	}
	updateCmd.Flags().StringP("file", "f", "", "report definition file (JSON)")
	_ = updateCmd.MarkFlagRequired("file")
	reportCmd.AddCommand(updateCmd)

	return reportCmd
}

func newSQLCmd() *cobra.Command {
	sqlCmd := &cobra.Command{
		Use:   "sql",
		Short: "Render designs to SQL and inspect results",
	}

	getCmd := &cobra.Command{
		Use:   "get <model> <design>",
		Short: "Compute SQL for a design, optionally running it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := buildQueryPayload(cmd)
			if err != nil {
				return err
			}

			api, stop, err := newAPIClient()
			if err != nil {
				return err
			}
			defer stop()

			result, err := api.GetSQL(cmd.Context(), args[0], args[1], payload)
			if err != nil {
				return err
			}

			if format, _ := cmd.Flags().GetString("format"); format == "table" {
				writeResultsTable(cmd.OutOrStdout(), result)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	getCmd.Flags().StringP("file", "f", "", "query payload file (JSON)")
	getCmd.Flags().StringSlice("columns", nil, "columns to select")
	getCmd.Flags().StringSlice("aggregates", nil, "aggregates to select")
	getCmd.Flags().Int("limit", 0, "row limit")
	getCmd.Flags().Bool("run", false, "run the query instead of only rendering SQL")
	getCmd.Flags().String("format", "json", "output format (json, table)")
	sqlCmd.AddCommand(getCmd)

	sqlCmd.AddCommand(&cobra.Command{
		Use:   "dialect <model>",
		Short: "Fetch the SQL dialect for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, stop, err := newAPIClient()
			if err != nil {
				return err
			}
			defer stop()

			dialect, err := api.GetDialect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dialect)
		},
	})

	distinctCmd := &cobra.Command{
		Use:   "distinct <model> <design> <field>",
		Short: "Fetch distinct values for a field",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, stop, err := newAPIClient()
			if err != nil {
				return err
			}
			defer stop()

			values, err := api.GetDistinct(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}

			if format, _ := cmd.Flags().GetString("format"); format == "table" {
				writeDistinctTable(cmd.OutOrStdout(), args[2], values)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), values)
		},
	}
	distinctCmd.Flags().String("format", "json", "output format (json, table)")
	sqlCmd.AddCommand(distinctCmd)

	return sqlCmd
}

// readReportFile loads a report definition from the --file flag.
func readReportFile(cmd *cobra.Command) (*models.Report, error) {
	path, _ := cmd.Flags().GetString("file")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}

	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report file: %w", err)
	}
	return &report, nil
}

// buildQueryPayload assembles a query payload from the --file flag or,
// failing that, from the selection flags.
func buildQueryPayload(cmd *cobra.Command) (*models.QueryPayload, error) {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read query file: %w", err)
		}
		var payload models.QueryPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("parse query file: %w", err)
		}
		return &payload, nil
	}

	columns, _ := cmd.Flags().GetStringSlice("columns")
	aggregates, _ := cmd.Flags().GetStringSlice("aggregates")
	limit, _ := cmd.Flags().GetInt("limit")
	run, _ := cmd.Flags().GetBool("run")

	return &models.QueryPayload{
		Columns:    columns,
		Aggregates: aggregates,
		Limit:      limit,
		Run:        run,
	}, nil
}
