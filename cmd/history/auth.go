package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/albapepper/fantasy-history/internal/config"
	"github.com/albapepper/fantasy-history/internal/yahoo"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Yahoo OAuth tokens",
	}
	cmd.AddCommand(authURLCmd())
	cmd.AddCommand(authExchangeCmd())
	cmd.AddCommand(authRefreshCmd())
	return cmd
}

func authURLCmd() *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the authorization URL to open in a browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				oauth, err := newOAuth(cfg)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), oauth.AuthorizationURL(state))
				fmt.Fprintln(cmd.OutOrStdout(), "\nAfter approving, copy the full redirect URL and run:")
				fmt.Fprintln(cmd.OutOrStdout(), "  history auth exchange '<redirect-url>'")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&state, "state", yahoo.DefaultState, "CSRF state value")
	return cmd
}

func authExchangeCmd() *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "exchange <redirect-url>",
		Short: "Exchange the code in a redirect URL for tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				code, stateOK, err := yahoo.ParseRedirect(args[0], state)
				if err != nil {
					return err
				}
				if !stateOK {
					logger.Warn("State mismatch in redirect url; continuing", "expected", state)
				}
				oauth, err := newOAuth(cfg)
				if err != nil {
					return err
				}
				_, err = oauth.Exchange(ctx, code)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&state, "state", yahoo.DefaultState, "Expected CSRF state value")
	return cmd
}

func authRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the access token in place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				oauth, err := newOAuth(cfg)
				if err != nil {
					return err
				}
				_, err = oauth.Refresh(ctx)
				return err
			})
		},
	}
}
