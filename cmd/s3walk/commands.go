package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vudodov/aws.s3/internal/actions"
)

func newLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "Print key, size and ETag of every object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.walk(cmd, false, actions.NewPrinter(cmd.OutOrStdout()).Operate)
			return err
		},
	}
}

func newDuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "du",
		Short: "Sum object counts and sizes per storage class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tally := actions.NewSizeTally()
			_, err := a.walk(cmd, false, tally.Operate)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CLASS\tOBJECTS\tBYTES")
			for _, total := range tally.Totals() {
				fmt.Fprintf(w, "%s\t%d\t%d\n", total.StorageClass, total.Objects, total.Bytes)
			}
			objects, bytes := tally.Sum()
			fmt.Fprintf(w, "TOTAL\t%d\t%d\n", objects, bytes)
			if flushErr := w.Flush(); err == nil {
				err = flushErr
			}
			return err
		},
	}
}

func newDigestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Print an order-independent digest of keys, ETags and sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			digest := actions.NewDigest()
			if _, err := a.walk(cmd, false, digest.Operate); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d objects\n", digest, digest.Count())
			return err
		},
	}
}

func newSniffCmd(a *app) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "sniff",
		Short: "Detect the MIME type of every object from its first bytes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			perObject := out
			if quiet {
				perObject = nil
			}
			sniffer := actions.NewSniffer(a.bucket, perObject)
			_, err := a.walk(cmd, true, sniffer.Operate)

			for _, c := range sniffer.Counts() {
				fmt.Fprintf(out, "%d\t%s\n", c.Objects, c.MIME)
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the per-type summary")
	return cmd
}
