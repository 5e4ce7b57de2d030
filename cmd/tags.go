package cmd

import (
	"fmt"
	"os"

	"github.com/benedict-erwin/influxmap/pkg/mapper"
	"github.com/benedict-erwin/influxmap/pkg/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:           "tags [tag_name]",
	Short:         "List distinct tag values",
	Long:          `List the distinct values a tag holds, optionally scoped to one measurement`,
	Args:          cobra.ExactArgs(1),
	RunE:          runTags,
	SilenceErrors: true,
}

var tagsMeasurement string

func init() {
	tagsCmd.Flags().StringVarP(&tagsMeasurement, "measurement", "m", "", "Restrict to one measurement name")
}

// runTags queries distinct values of a tag
func runTags(cmd *cobra.Command, args []string) error {
	tagName := args[0]

	var m *schema.Measurement
	if tagsMeasurement != "" {
		var err error
		m, err = schema.NewMeasurement(tagsMeasurement, []schema.Tag{schema.NewTag(tagName)}, nil)
		if err != nil {
			return err
		}
	}

	client, err := mapper.New()
	if err != nil {
		return err
	}

	values, err := client.DistinctTagValues(tagName, m, nil)
	if err != nil {
		return err
	}

	if len(values) == 0 {
		fmt.Printf("No values found for tag %q.\n", tagName)
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(tagName)
	for _, value := range values {
		table.Append([]string{value})
	}
	table.Render()

	fmt.Printf("\n%d distinct value(s).\n", len(values))
	return nil
}
