package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shopmap/internal/store"
)

func newSearchCmd(opts *options) *cobra.Command {
	var city string
	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search places by keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pois, err := opts.app.Shops.Search(cmd.Context(), strings.Join(args, " "), city)
			if err != nil {
				return err
			}
			return renderPOIs(cmd.OutOrStdout(), pois)
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "restrict results to a city")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved shops",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parseUser(user)
			if err != nil {
				return err
			}
			records, mode, err := opts.app.Shops.Records(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d shops (%s)\n", len(records), mode)
			return renderRecords(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id; empty lists the local file")
	return cmd
}

func newMigrateCmd(opts *options) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy the local shop file into a user's empty cloud table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parseUser(user)
			if err != nil {
				return err
			}
			pg, err := opts.app.RequireCloud()
			if err != nil {
				return err
			}
			n, err := migrate(cmd, opts.app.Local, pg.ForUser(id))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d shops from %s\n", n, opts.app.Local.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

var errCloudNotEmpty = errors.New("cloud table already has records")

func migrate(cmd *cobra.Command, local *store.CSVStore, dst store.RecordStore) (int, error) {
	existing, err := dst.Load(cmd.Context())
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, fmt.Errorf("%w: %d", errCloudNotEmpty, len(existing))
	}
	return store.MigrateLocal(cmd.Context(), local, dst)
}
