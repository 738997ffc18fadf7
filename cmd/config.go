package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/studysync/internal/config"
	"github.com/marcus/studysync/internal/output"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage studysync configuration",
	GroupID: "system",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long:  `Show every config key with its effective value after file, environment and flags are applied.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, cmd.Flags())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		values := cfg.Values()
		if jsonOutput {
			return output.JSON(values)
		}
		fmt.Println(output.KeyValueTable(values))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			path = config.DefaultFile()
		}
		if err := config.Set(path, args[0], args[1]); err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List known config keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, k := range config.Keys() {
			fmt.Println(k)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			fmt.Println(configFile)
			return nil
		}
		fmt.Println(config.DefaultFile())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configKeysCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
