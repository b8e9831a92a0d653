package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mgomes/filtrex/filtrex"
	"github.com/spf13/cobra"
)

func newEvalCmd(a *app) *cobra.Command {
	var (
		recordPath  string
		assignments []string
	)
	cmd := &cobra.Command{
		Use:   "eval EXPR",
		Short: "Evaluate an expression against one record",
		Example: `  filtrex eval 'price * qty > 100' --set price=12 --set qty=10
  echo '{"name": "Ann"}' | filtrex eval 'upper(name)' --record -
  filtrex eval --set x=3 -- '-x * 2'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pred, err := a.compile(args[0])
			if err != nil {
				return err
			}
			record, err := loadRecord(recordPath, assignments, cmd.InOrStdin())
			if err != nil {
				return err
			}
			result, err := pred.Eval(record)
			if err != nil {
				return fmt.Errorf("evaluation failed: %w", err)
			}
			if a.cfg.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"result": filtrex.ToGo(result)})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Inspect())
			return err
		},
	}
	cmd.Flags().StringVarP(&recordPath, "record", "r", "", "JSON or YAML record file (- for stdin)")
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "set a record field (name=value, repeatable)")
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check EXPR",
		Short: "Compile an expression and print its canonical form",
		Long: `Compile an expression without evaluating it. On success the fully
parenthesised form is printed, which shows how precedence was applied.`,
		Example: `  filtrex check 'a + b * c'
  filtrex check -- '-a ^ 2'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pred, err := a.compile(args[0])
			if err != nil {
				return err
			}
			if a.cfg.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"source":    pred.Source(),
					"canonical": pred.String(),
				})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), pred.String())
			return err
		},
	}
}

func newFunctionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the functions expressions may call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := a.engine.Functions()
			if a.cfg.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), names)
			}
			for _, name := range names {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
