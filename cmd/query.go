package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/benedict-erwin/influxmap/pkg/influxdb"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:           "query [query_string]",
	Short:         "Run a raw query",
	Long:          `Run a raw query in the dialect of the configured InfluxDB version and print the result as a table`,
	Args:          cobra.ExactArgs(1),
	RunE:          runQuery,
	SilenceErrors: true,
}

var queryLimit int

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "l", 0, "Stop after this many rows (0 = no limit)")
}

// runQuery executes a raw query and renders the rows
func runQuery(cmd *cobra.Command, args []string) error {
	it, err := influxdb.Query(args[0])
	if err != nil {
		return err
	}
	defer it.Close()

	var rows []map[string]interface{}
	for it.Next() {
		record := it.Record()
		if record == nil {
			continue
		}
		rows = append(rows, record)
		if queryLimit > 0 && len(rows) >= queryLimit {
			break
		}
	}
	if err := it.Err(); err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Println("Empty result.")
		return nil
	}

	columns := resultColumns(rows)
	table := tablewriter.NewWriter(os.Stdout)
	table.Header(columns)
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, column := range columns {
			cells[i] = cellString(row[column])
		}
		table.Append(cells)
	}
	table.Render()

	fmt.Printf("\n%d row(s).\n", len(rows))
	return nil
}

// resultColumns collects the union of row keys, time first then sorted
func resultColumns(rows []map[string]interface{}) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, row := range rows {
		for key := range row {
			if key == "time" || seen[key] {
				continue
			}
			seen[key] = true
			columns = append(columns, key)
		}
	}
	sort.Strings(columns)

	if _, ok := rows[0]["time"]; ok {
		columns = append([]string{"time"}, columns...)
	}
	return columns
}

func cellString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
