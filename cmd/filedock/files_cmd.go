package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"filedock/internal/flags"
	"filedock/internal/service"
	"filedock/internal/ui/spinner"
	"filedock/pkg/formatter"
	"filedock/pkg/storage"

	"github.com/spf13/cobra"
)

// Upload source that reads the file body from standard input
const stdinSource = "-"

type filesFlags struct {
	provider    string
	bucket      string
	prefix      string
	output      string
	dest        string
	destPrefix  string
	out         string
	concurrency int
	force       bool
}

func newFilesCmd() *cobra.Command {
	cmdFlags := filesFlags{}

	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Manage files in a storage bucket",
		Long: `The files command lists, uploads, downloads and deletes files in a bucket of the configured provider.
The bucket defaults to the 'bucket' configuration key and can be overridden with --bucket.`,
	}
	filesCmd.PersistentFlags().StringVarP(&cmdFlags.provider, flags.Provider, flags.ProviderShort, "", "Storage provider (aws, gcp, minio). Defaults to the configured provider.")
	filesCmd.PersistentFlags().StringVarP(&cmdFlags.bucket, flags.Bucket, flags.BucketShort, "", "Bucket to operate on. Defaults to the configured bucket.")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List files in the bucket",
		Long:  `Lists the files stored under --prefix. Zero-byte directory placeholders are skipped and only the first page of results is shown.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, svc, ctx, cancel, err := setupFilesCommand(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			files, err := svc.ListFiles(ctx, cmdFlags.provider, cmdFlags.bucket, cmdFlags.prefix)
			if err != nil {
				return err
			}

			out, err := app.Formatter.Format(files, cmdFlags.output)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	listCmd.Flags().StringVar(&cmdFlags.prefix, flags.Prefix, "", "Only list files whose key starts with this prefix")
	listCmd.Flags().StringVarP(&cmdFlags.output, flags.Output, flags.OutputShort, formatter.OutputTable, "Output format: table, json or yaml")

	uploadCmd := &cobra.Command{
		Use:   "upload [source]...",
		Short: "Upload local files",
		Long: `Uploads one or more local files. Each file is stored under --dest-prefix followed by its base name,
or under --dest when a single file is uploaded. Use '-' as the source to read the body from standard input (requires --dest).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := buildUploadRequests(args, cmdFlags.dest, cmdFlags.destPrefix, cmd.InOrStdin())
			if err != nil {
				return err
			}

			app, svc, ctx, cancel, err := setupFilesCommand(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			concurrency := transferConcurrency(cmd, app, cmdFlags.concurrency)

			var files []storage.File
			err = spinner.Run(ctx, os.Stderr, fmt.Sprintf("Uploading %d file(s)", len(reqs)), func(ctx context.Context) error {
				uploaded, err := svc.UploadFiles(ctx, cmdFlags.provider, cmdFlags.bucket, reqs, concurrency)
				files = uploaded
				return err
			})
			if err != nil {
				return err
			}

			out, err := app.Formatter.Format(files, cmdFlags.output)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	uploadCmd.Flags().StringVar(&cmdFlags.dest, flags.Dest, "", "Object key for a single uploaded file")
	uploadCmd.Flags().StringVar(&cmdFlags.destPrefix, flags.DestPrefix, "", "Key prefix for uploaded files, e.g. 'images/'")
	uploadCmd.Flags().StringVarP(&cmdFlags.output, flags.Output, flags.OutputShort, formatter.OutputTable, "Output format: table, json or yaml")
	uploadCmd.Flags().IntVar(&cmdFlags.concurrency, flags.Concurrency, 0, "Maximum parallel uploads. Defaults to transfer.concurrency.")
	uploadCmd.MarkFlagsMutuallyExclusive(flags.Dest, flags.DestPrefix)

	deleteCmd := &cobra.Command{
		Use:   "delete [key]",
		Short: "Delete a file",
		Long:  `Deletes a file from the bucket. You are asked to type the key to confirm unless --force is given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			// Confirm before the transfer timeout starts
			if !cmdFlags.force {
				confirmed, err := app.Prompter.Confirm(fmt.Sprintf("This will permanently delete '%s'.", key), key)
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled.")
					return nil
				}
			}

			_, svc, ctx, cancel, err := setupFilesCommand(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			if err := svc.DeleteFile(ctx, cmdFlags.provider, cmdFlags.bucket, key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "File '%s' deleted.\n", key)
			return nil
		},
	}
	deleteCmd.Flags().BoolVarP(&cmdFlags.force, flags.Force, flags.ForceShort, false, "Delete without confirmation")

	downloadCmd := &cobra.Command{
		Use:   "download [key]...",
		Short: "Download files",
		Long: `Downloads one or more files. A single file is written to --out (default: its base name in the current directory).
Several files are written under the --out directory (default: current directory) keeping their key paths.
Existing local files are never overwritten.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := buildDownloadRequests(args, cmdFlags.out)
			if err != nil {
				return err
			}

			app, svc, ctx, cancel, err := setupFilesCommand(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			concurrency := transferConcurrency(cmd, app, cmdFlags.concurrency)

			err = spinner.Run(ctx, os.Stderr, fmt.Sprintf("Downloading %d file(s)", len(reqs)), func(ctx context.Context) error {
				return svc.DownloadFiles(ctx, cmdFlags.provider, cmdFlags.bucket, reqs, concurrency)
			})
			if err != nil {
				return err
			}

			for _, req := range reqs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", req.Key, req.OutFile)
			}
			return nil
		},
	}
	downloadCmd.Flags().StringVar(&cmdFlags.out, flags.Out, "", "Output file (single key) or directory (several keys)")
	downloadCmd.Flags().IntVar(&cmdFlags.concurrency, flags.Concurrency, 0, "Maximum parallel downloads. Defaults to transfer.concurrency.")

	urlCmd := &cobra.Command{
		Use:   "url [key]...",
		Short: "Print the public URL of files",
		Long:  `Prints the public URL of each key, built from the 'public_url' configuration key. The provider is not contacted.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			svc, _, err := app.Services()
			if err != nil {
				return err
			}

			urls, err := svc.FileURLs(args)
			if err != nil {
				return err
			}
			for _, u := range urls {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		},
	}

	infoCmd := &cobra.Command{
		Use:   "info [key]",
		Short: "Show the metadata of a file",
		Long:  `Shows size, content type, storage class, ETag, last modification time and public URL of a file.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, svc, ctx, cancel, err := setupFilesCommand(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			info, err := svc.FileInfo(ctx, cmdFlags.provider, cmdFlags.bucket, args[0])
			if err != nil {
				return err
			}

			out, err := app.Formatter.FormatInfo(info, cmdFlags.output)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	infoCmd.Flags().StringVarP(&cmdFlags.output, flags.Output, flags.OutputShort, formatter.OutputTable, "Output format: table, json or yaml")

	filesCmd.AddCommand(listCmd, uploadCmd, deleteCmd, downloadCmd, urlCmd, infoCmd)
	return filesCmd
}

// setupFilesCommand wires the file service and applies transfer.timeout to the command context
func setupFilesCommand(cmd *cobra.Command) (*appContainer, *service.FileService, context.Context, context.CancelFunc, error) {
	app, err := appFromContext(cmd.Context())
	if err != nil {
		return nil, nil, nil, nil, err
	}

	svc, cfg, err := app.Services()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	ctx, cancel := cmd.Context(), context.CancelFunc(func() {})
	if cfg.Transfer.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Transfer.Timeout)
	}
	return app, svc, ctx, cancel, nil
}

func transferConcurrency(cmd *cobra.Command, app *appContainer, flagValue int) int {
	if cmd.Flags().Changed(flags.Concurrency) && flagValue > 0 {
		return flagValue
	}
	if _, cfg, err := app.Services(); err == nil {
		return cfg.Transfer.Concurrency
	}
	return 1
}

func buildUploadRequests(sources []string, dest, destPrefix string, stdin io.Reader) ([]service.UploadRequest, error) {
	if dest != "" && len(sources) > 1 {
		return nil, fmt.Errorf("--%s can only be used with a single source, use --%s for several files", flags.Dest, flags.DestPrefix)
	}

	reqs := make([]service.UploadRequest, 0, len(sources))
	for _, src := range sources {
		if src == stdinSource {
			if dest == "" {
				return nil, fmt.Errorf("uploading from standard input requires --%s", flags.Dest)
			}
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("error reading standard input: %w", err)
			}
			reqs = append(reqs, service.UploadRequest{Data: data, Destination: dest})
			continue
		}

		key := dest
		if key == "" {
			key = joinKey(destPrefix, filepath.Base(src))
		}
		reqs = append(reqs, service.UploadRequest{Source: src, Destination: key})
	}
	return reqs, nil
}

// buildDownloadRequests maps keys to local paths. Two keys resolving to the same path are rejected.
func buildDownloadRequests(keys []string, out string) ([]service.DownloadRequest, error) {
	reqs := make([]service.DownloadRequest, 0, len(keys))

	if len(keys) == 1 {
		outFile := out
		if outFile == "" {
			outFile = path.Base(keys[0])
		}
		return append(reqs, service.DownloadRequest{Key: keys[0], OutFile: outFile}), nil
	}

	dir := out
	if dir == "" {
		dir = "."
	}
	seen := make(map[string]string, len(keys))
	for _, key := range keys {
		outFile := filepath.Join(dir, filepath.FromSlash(strings.TrimLeft(key, "/")))
		if prev, ok := seen[outFile]; ok {
			return nil, fmt.Errorf("%w: keys '%s' and '%s' would both be written to %s", storage.ErrInvalidArgument, prev, key, outFile)
		}
		seen[outFile] = key
		reqs = append(reqs, service.DownloadRequest{Key: key, OutFile: outFile})
	}
	return reqs, nil
}

// joinKey joins an object key prefix and a name with exactly one slash
func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimRight(prefix, "/") + "/" + name
}
