package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/elastic/datarecording"
	"github.com/sarchlab/elastic/tracing"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <recording>",
	Short: "Print the rows of a recorded run.",
	Long: "`dump` reads a database written by `run --record` and prints one " +
		"table, ordered by cycle. The recording may be named with or " +
		"without its .sqlite3 suffix.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, err := recordingFile(args[0])
		if err != nil {
			return err
		}

		reader := datarecording.NewReader(filename)
		defer reader.Close()

		reader.MapTable(tracing.TransferTable, tracing.TransferEntry{})
		reader.MapTable(tracing.StallTable, tracing.TransferEntry{})
		reader.MapTable(tracing.GrantTable, tracing.GrantEntry{})

		f := cmd.Flags()
		table, _ := f.GetString("table")
		where, _ := f.GetString("where")
		limit, _ := f.GetInt("limit")
		offset, _ := f.GetInt("offset")

		rows, total, err := reader.Query(cmd.Context(), table,
			datarecording.QueryParams{
				Where:   where,
				Limit:   limit,
				Offset:  offset,
				OrderBy: "Cycle",
			})
		if err != nil {
			return err
		}

		asJSON, _ := f.GetBool("json")
		if asJSON {
			return printDumpJSON(cmd, table, total, rows)
		}

		return printDumpTable(cmd, table, total, rows)
	},
}

// dumpResult is the JSON form of a dumped table.
type dumpResult struct {
	Table string `json:"table"`
	Total int    `json:"total"`
	Rows  []any  `json:"rows"`
}

func recordingFile(name string) (string, error) {
	candidates := []string{name}
	if !strings.HasSuffix(name, ".sqlite3") {
		candidates = append(candidates, name+".sqlite3")
	}

	for _, c := range candidates {
		info, err := os.Stat(c)
		if err == nil && !info.IsDir() {
			return c, nil
		}
	}

	return "", errors.Errorf("recording %s not found", name)
}

func printDumpJSON(cmd *cobra.Command, table string, total int, rows []any) error {
	if rows == nil {
		rows = []any{}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(dumpResult{Table: table, Total: total, Rows: rows})
}

func printDumpTable(cmd *cobra.Command, table string, total int, rows []any) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d of %d rows\n", table, len(rows), total)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	for i, row := range rows {
		switch r := row.(type) {
		case tracing.TransferEntry:
			if i == 0 {
				fmt.Fprintln(w, "CYCLE\tCHANNEL\tDATA")
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", r.Cycle, r.Channel, r.Data)
		case tracing.GrantEntry:
			if i == 0 {
				fmt.Fprintln(w, "CYCLE\tARBITER\tREQUESTS\tGRANT\tREQUESTER")
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n",
				r.Cycle, r.Arbiter, r.Requests, r.Grant, r.Requester)
		}
	}

	return w.Flush()
}

func init() {
	f := dumpCmd.Flags()
	f.String("table", tracing.TransferTable, "table to print: "+
		strings.Join([]string{
			tracing.TransferTable, tracing.StallTable, tracing.GrantTable,
		}, ", "))
	f.String("where", "", "SQL condition on the rows, e.g. \"Cycle < 10\"")
	f.Int("limit", 0, "print at most this many rows (0 prints all)")
	f.Int("offset", 0, "skip this many rows (used with --limit)")
	f.Bool("json", false, "print the rows as JSON")
	rootCmd.AddCommand(dumpCmd)
}
