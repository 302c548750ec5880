package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const forceFlagName = "force"

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default sieve.yaml configuration file",
		Long: `Create a sieve.yaml in the current working directory holding the effective
settings: worker pools, flakiness runs, coverage sampling, execution timeouts,
ensemble strategies and temperatures, the generation backend and logging.
Edit it to tune sessions run from this directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			write := viper.SafeWriteConfigAs
			if force {
				write = viper.WriteConfigAs
			}

			if err := write(targetPath); err != nil {
				return fmt.Errorf("failed to write config file (use --%s to overwrite): %w", forceFlagName, err)
			}

			cmd.Printf("Wrote %s (%d strategies, temperatures %v, %d filtration workers)\n",
				targetPath,
				len(viper.GetStringSlice(strategiesKey)),
				viper.Get(temperaturesKey),
				viper.GetInt(filtrationWorkersKey),
			)

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, forceFlagName, false, "overwrite an existing configuration file")

	return cmd
}

func init() {
	rootCmd.AddCommand(initCmd)
}
