package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/DukeRupert/estoque/internal/token"
	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue and verify session tokens",
		Long: `Issue and verify the HS256 tokens stored in the auth_token cookie.

The signing secret comes from --secret, then JWT_SECRET, then the
built-in development default.`,
	}

	cmd.PersistentFlags().StringVar(&secret, "secret", "", "Signing secret (defaults to $JWT_SECRET)")

	cmd.AddCommand(
		tokenIssueCmd(&secret),
		tokenVerifyCmd(&secret),
	)

	return cmd
}

func tokenIssueCmd(secret *string) *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a token for a user id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user-id is required")
			}

			codec := token.NewCodec(resolveSecret(*secret), token.WithTTL(ttl))
			raw, err := codec.Issue(token.Payload{UserID: userID})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User id to embed in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", token.DefaultTTL, "Token lifetime")

	return cmd
}

func tokenVerifyCmd(secret *string) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claims, err := token.NewCodec(resolveSecret(*secret)).Decode(args[0])
			if err != nil {
				return err
			}

			out := map[string]any{
				"userId": claims.UserID,
			}
			if claims.IssuedAt != nil {
				out["iat"] = claims.IssuedAt.Unix()
			}
			if claims.ExpiresAt != nil {
				out["exp"] = claims.ExpiresAt.Unix()
				out["expires"] = claims.ExpiresAt.UTC().Format(time.RFC3339)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func resolveSecret(flag string) []byte {
	if flag != "" {
		return []byte(flag)
	}
	if env := os.Getenv("JWT_SECRET"); env != "" {
		return []byte(env)
	}
	return []byte(token.DefaultSecret)
}
