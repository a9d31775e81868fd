package main

import (
	"fmt"
	"strings"

	"filedock/internal/flags"

	"github.com/spf13/cobra"
)

// Values of keys containing one of these fragments are masked by 'config list'
var secretKeyFragments = []string{"secret", "access_key"}

func newConfigCmd() *cobra.Command {
	var force bool

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage configuration settings for providers. You can set, get, list, and delete configuration values.
Every key can also be set through the environment, e.g. FILEDOCK_AWS_REGION for aws.region.`,
	}

	configSetCmd := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set a configuration key-value pair",
		Long:  `Sets a configuration value. For example: 'filedock config set public_url https://cdn.example.com'`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			key := strings.ToLower(args[0])
			value := args[1]

			if err := app.ConfigManager.SetValue(key, value); err != nil {
				return fmt.Errorf("error setting configuration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration set: %s = %s\n", key, maskValue(key, value))

			// The value is kept even when invalid so that related keys can be fixed one at a time
			if _, err := app.ConfigManager.LoadConfig(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			}
			return nil
		},
	}

	configGetCmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get a configuration value by key",
		Long:  `Retrieves the effective value for a key, including environment overrides and defaults. For example: 'filedock config get aws.region'`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			key := strings.ToLower(args[0])
			value, known := app.ConfigManager.GetValue(key)
			if !known {
				return fmt.Errorf("unknown configuration key '%s'. Known keys: %s", key, strings.Join(app.ConfigManager.KnownKeys(), ", "))
			}

			s := fmt.Sprint(value)
			if value == nil || s == "" {
				return fmt.Errorf("configuration key '%s' is not set", key)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, s)
			return nil
		},
	}

	configDeleteCmd := &cobra.Command{
		Use:   "delete [key]",
		Short: "Delete a configuration value by key",
		Long:  `Deletes a configuration value from the config file. For example: 'filedock config delete gcp.project'`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			key := strings.ToLower(args[0])
			if !force {
				ok, err := app.Prompter.YesNo(fmt.Sprintf("Remove '%s' from %s?", key, app.ConfigManager.Path()), false)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted.")
					return nil
				}
			}

			deleted, err := app.ConfigManager.DeleteValue(key)
			if err != nil {
				return fmt.Errorf("error deleting configuration: %w", err)
			}
			if !deleted {
				return fmt.Errorf("configuration key '%s' not found in %s", key, app.ConfigManager.Path())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration key '%s' deleted\n", key)
			return nil
		},
	}
	configDeleteCmd.Flags().BoolVarP(&force, flags.Force, flags.ForceShort, false, "Delete without confirmation")

	configListCmd := &cobra.Command{
		Use:   "list",
		Short: "List all current configuration values",
		Long:  `Displays every configuration value that is set, including defaults and environment overrides. Secrets are masked.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			display := make(map[string]string)
			for k, v := range flattenConfigMap(app.ConfigManager.GetAllSettings()) {
				if v == nil {
					continue
				}
				if s := fmt.Sprint(v); s != "" {
					display[k] = maskValue(k, s)
				}
			}

			if len(display) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No configuration values set. Use 'filedock config set <key> <value>'.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Current configuration (%s):\n", app.ConfigManager.Path())
			fmt.Fprintln(cmd.OutOrStdout(), app.Formatter.FormatSettings(display))
			return nil
		},
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.ConfigManager.Path())
			return nil
		},
	}

	configCmd.AddCommand(configSetCmd, configGetCmd, configDeleteCmd, configListCmd, configPathCmd)
	return configCmd
}

// Recursively flattens a nested map (like Viper's config) into a flat map with dot notation keys
func flattenConfigMap(nestedMap map[string]interface{}) map[string]interface{} {
	flattenedMap := make(map[string]interface{})

	var flatten func(string, interface{})
	flatten = func(prefix string, value interface{}) {
		switch v := value.(type) {
		case map[string]interface{}:
			for k, val := range v {
				newPrefix := k
				if prefix != "" {
					newPrefix = prefix + "." + k
				}
				flatten(newPrefix, val)
			}
		default:
			if prefix != "" {
				flattenedMap[prefix] = value
			}
		}
	}

	flatten("", nestedMap)
	return flattenedMap
}

// maskValue keeps the last four characters of secrets
func maskValue(key, value string) string {
	secret := false
	for _, fragment := range secretKeyFragments {
		if strings.Contains(key, fragment) {
			secret = true
			break
		}
	}
	if !secret || value == "" {
		return value
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
