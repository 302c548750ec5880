package cmd

import (
	"bytes"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// strategiesCmd represents the strategies command.
var strategiesCmd = newStrategiesCmd()

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the available generation strategies",
		Long: `List the built-in generation strategies together with the ones loaded from
ensemble.strategies_file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := loadStrategySet(viper.GetString(strategiesFileKey))
			if err != nil {
				return err
			}

			var buf bytes.Buffer

			table := tablewriter.NewWriter(&buf)
			table.SetHeader([]string{"Name", "Source", "Description"})
			table.SetBorder(false)
			table.SetCenterSeparator("")
			table.SetAutoWrapText(false)

			for _, strategy := range set.All() {
				usesSource := "no"
				if strategy.UsesSource {
					usesSource = "yes"
				}

				table.Append([]string{strategy.Name, usesSource, strategy.Description})
			}

			table.Render()
			cmd.Print(buf.String())

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
