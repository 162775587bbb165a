package main

import (
	"sort"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect memora configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			out, err := yaml.Marshal(printable(c.v.AllSettings()))
			if err != nil {
				return err
			}
			if used := c.v.ConfigFileUsed(); used != "" {
				c.printf("# %s\n", used)
			}
			c.printf("%s", out)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "List every configuration key",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			keys := c.v.AllKeys()
			sort.Strings(keys)
			for _, key := range keys {
				c.printf("%s\n", key)
			}
			return nil
		},
	})
	return cmd
}

// printable renders durations the way they are written in config files.
func printable(settings map[string]any) map[string]any {
	out := make(map[string]any, len(settings))
	for key, value := range settings {
		switch v := value.(type) {
		case map[string]any:
			out[key] = printable(v)
		case time.Duration:
			out[key] = v.String()
		default:
			out[key] = v
		}
	}
	return out
}
