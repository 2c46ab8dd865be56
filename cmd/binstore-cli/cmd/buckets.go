package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newBucketsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "buckets",
		Short: "List all buckets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buckets, err := a.service.GetBuckets(cmd.Context())
			if err != nil {
				return err
			}
			sort.Strings(buckets)
			for _, b := range buckets {
				fmt.Fprintln(cmd.OutOrStdout(), b)
			}
			return nil
		},
	}
}

func newAssetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assets <bucket>",
		Short: "List the assets in a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assets, err := a.service.GetBucketList(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			sort.Strings(assets)
			for _, asset := range assets {
				fmt.Fprintln(cmd.OutOrStdout(), asset)
			}
			return nil
		},
	}
}

func newMkbucketCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "mkbucket <bucket>",
		Short: "Create a bucket",
		Long: `Create a bucket under the storage root.

Examples:
  binstore-cli mkbucket docs            # fails if docs already exists
  binstore-cli mkbucket docs --force    # succeeds if docs already exists`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.service.CreateBucket(cmd.Context(), args[0], force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Treat an existing bucket as success")
	return cmd
}
