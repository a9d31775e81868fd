package main

import (
	"errors"
	"fmt"
	"os"

	"filedock/internal/flags"
	"filedock/pkg/storage"

	"github.com/spf13/cobra"
)

// Exit codes by error kind
const (
	exitError          = 1
	exitConfiguration  = 2
	exitNotFound       = 3
	exitConflict       = 4
	exitAuthentication = 5
)

func newRootCmd() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "filedock",
		Short: "filedock manages files in cloud object storage.",
		Long: `A unified CLI to upload, list, download and delete files in object storage
buckets on AWS S3, Google Cloud Storage and MinIO, and to build their public URLs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(debug, cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cmd.SetContext(withApp(cmd.Context(), app))
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&debug, flags.Debug, flags.DebugShort, false, "Enable debug logging")

	rootCmd.AddCommand(newFilesCmd(), newConfigCmd())
	return rootCmd
}

func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitCode(err)
	}
	return 0
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, storage.ErrConfiguration), errors.Is(err, storage.ErrInvalidArgument):
		return exitConfiguration
	case errors.Is(err, storage.ErrNotFound):
		return exitNotFound
	case errors.Is(err, storage.ErrConflict):
		return exitConflict
	case errors.Is(err, storage.ErrAuthentication):
		return exitAuthentication
	default:
		return exitError
	}
}
