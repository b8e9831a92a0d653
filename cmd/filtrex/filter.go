package main

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mgomes/filtrex/filtrex"
	"github.com/spf13/cobra"
)

// filterRow is one evaluated record as shown by filter.
type filterRow struct {
	Index   int            `json:"index"`
	Record  map[string]any `json:"record"`
	Matched bool           `json:"matched"`
	Error   string         `json:"error,omitempty"`
}

func newFilterCmd(a *app) *cobra.Command {
	var (
		recordsPath string
		columns     []string
		showAll     bool
		strict      bool
	)
	cmd := &cobra.Command{
		Use:   "filter EXPR",
		Short: "Evaluate an expression over a list of records",
		Long: `Evaluate an expression over every record of a JSON or YAML list and
print the records it matches. Records are evaluated concurrently.`,
		Example: `  filtrex filter 'status == "active" and age >= 18' --records users.json
  filtrex filter 'total > 100' -r orders.yaml --columns id,total --all
  filtrex filter -r orders.json -- '-balance > 0'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pred, err := a.compile(args[0])
			if err != nil {
				return err
			}
			records, err := loadRecords(recordsPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			results, err := pred.EvalAll(cmd.Context(), records, a.cfg.Parallelism)
			if err != nil {
				return fmt.Errorf("evaluation interrupted: %w", err)
			}

			rows, failures := collectRows(records, results)
			for _, row := range rows {
				if row.Error == "" {
					continue
				}
				if strict {
					return fmt.Errorf("record %d: %s", row.Index, row.Error)
				}
				a.logger.Warn("record failed", slog.Int("index", row.Index), slog.String("error", row.Error))
			}
			if !showAll {
				rows = slices.DeleteFunc(rows, func(r filterRow) bool { return !r.Matched })
			}

			if a.cfg.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			renderRows(cmd.OutOrStdout(), rows, columns, showAll)
			matched := 0
			for _, row := range rows {
				if row.Matched {
					matched++
				}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "(%d of %d records matched, %d failed)\n", matched, len(records), failures)
			return err
		},
	}
	cmd.Flags().StringVarP(&recordsPath, "records", "r", "", "JSON or YAML file holding a list of records (- for stdin)")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "record fields to show (default: all fields of the shown records)")
	cmd.Flags().BoolVar(&showAll, "all", false, "show records that did not match")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on the first record that cannot be evaluated")
	cmd.Flags().Int("parallelism", 0, "number of records evaluated at once (default: GOMAXPROCS)")
	_ = cmd.MarkFlagRequired("records")
	return cmd
}

func collectRows(records []any, results []filtrex.Result) ([]filterRow, int) {
	rows := make([]filterRow, len(results))
	failures := 0
	for i, r := range results {
		row := filterRow{Index: r.Index}
		if rec, ok := records[i].(map[string]any); ok {
			row.Record = rec
		}
		switch {
		case r.Err != nil:
			row.Error = r.Err.Error()
		case r.Value.Kind() != filtrex.KindBool:
			row.Error = fmt.Sprintf("expression returned %s, not a boolean", r.Value.Inspect())
		default:
			row.Matched = r.Value.Bool()
		}
		if row.Error != "" {
			failures++
		}
		rows[i] = row
	}
	return rows, failures
}

func renderRows(w io.Writer, rows []filterRow, columns []string, showStatus bool) {
	if len(columns) == 0 {
		seen := map[string]struct{}{}
		for _, row := range rows {
			for name := range row.Record {
				seen[name] = struct{}{}
			}
		}
		columns = slices.Sorted(maps.Keys(seen))
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"#"}
	for _, col := range columns {
		header = append(header, col)
	}
	if showStatus {
		header = append(header, "match")
	}
	t.AppendHeader(header)

	for _, row := range rows {
		line := table.Row{row.Index}
		for _, col := range columns {
			line = append(line, cellText(row.Record, col))
		}
		if showStatus {
			switch {
			case row.Error != "":
				line = append(line, "error")
			case row.Matched:
				line = append(line, "yes")
			default:
				line = append(line, "no")
			}
		}
		t.AppendRow(line)
	}
	t.Render()
}

func cellText(record map[string]any, name string) string {
	raw, ok := record[name]
	if !ok {
		return ""
	}
	v, err := filtrex.FromGo(raw)
	if err != nil {
		return fmt.Sprint(raw)
	}
	switch v.Kind() {
	case filtrex.KindNil:
		return ""
	case filtrex.KindString, filtrex.KindNumber, filtrex.KindBool:
		return v.String()
	default:
		return v.Inspect()
	}
}
