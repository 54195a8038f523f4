package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/teemow/workspace-console/internal/google"
)

// cliSession names the session used by one-shot verification.
const cliSession = "cli"

func newVerifyCmd(opts *globalOptions) *cobra.Command {
	var (
		accessToken  string
		authCode     string
		printAuthURL bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check whether a signed-in user is a super administrator",
		Long: `Resolves the user behind a Google access token and checks the directory for
super administrator privileges.

The token can be passed with --access-token, or obtained by signing in:
  1. workspace-console verify --print-auth-url
  2. open the URL, consent, copy the code
  3. workspace-console verify --auth-code <code>

Signing in requires google.oauthClientId and google.oauthClientSecret.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts, nil)
			if err != nil {
				return err
			}
			conf := google.UserOAuthConfig(cfg.Google.OAuthClientID, cfg.Google.OAuthClientSecret, cfg.Google.OAuthRedirectURL)

			if printAuthURL {
				if cfg.Google.OAuthClientID == "" {
					return errors.New("google.oauthClientId is not configured")
				}
				fmt.Fprintln(cmd.OutOrStdout(), conf.AuthCodeURL("workspace-console", oauth2.AccessTypeOnline))
				return nil
			}

			sc, err := newCLIContext(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer sc.Shutdown()

			token := accessToken
			if authCode != "" {
				tok, err := google.ExchangeAuthCode(cmd.Context(), conf, authCode)
				if err != nil {
					return err
				}
				token = tok.AccessToken
			}

			fmt.Fprintln(cmd.OutOrStdout(), sc.Verifier().Verify(cmd.Context(), sc.Sessions().Session(cliSession), token))
			return nil
		},
	}

	cmd.Flags().StringVar(&accessToken, "access-token", "", "Google access token of the user to verify")
	cmd.Flags().StringVar(&authCode, "auth-code", "", "Authorization code from the consent screen")
	cmd.Flags().BoolVar(&printAuthURL, "print-auth-url", false, "Print the consent URL and exit")
	cmd.MarkFlagsMutuallyExclusive("access-token", "auth-code", "print-auth-url")

	return cmd
}
