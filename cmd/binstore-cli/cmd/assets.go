package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newPutCmd(a *app) *cobra.Command {
	var createBucket, override bool
	cmd := &cobra.Command{
		Use:   "put <bucket> <asset> <file|->",
		Short: "Store a file as an asset",
		Long: `Store a file as an asset. Use "-" to read the content from stdin.

Examples:
  binstore-cli put docs readme.txt ./README.md
  binstore-cli put docs readme.txt ./README.md --override
  cat build.tar | binstore-cli put artifacts build.tar - --create-bucket`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, asset, source := args[0], args[1], args[2]

			var r io.Reader = cmd.InOrStdin()
			if source != "-" {
				f, err := os.Open(source)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			n, err := a.service.StoreAsset(cmd.Context(), bucket, asset, r, createBucket, override)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s/%s (%d bytes)\n", bucket, asset, n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&createBucket, "create-bucket", false, "Create the bucket if it does not exist")
	cmd.Flags().BoolVar(&override, "override", false, "Replace the asset if it already exists")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get <bucket> <asset>",
		Short: "Write an asset's content to stdout or a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := a.service.GetAsset(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			defer content.Close()

			if output != "" {
				return writeFile(output, content)
			}
			_, err = io.Copy(cmd.OutOrStdout(), content)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

// writeFile copies r into the file at path. A failed copy or close leaves no
// partial file behind.
func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
