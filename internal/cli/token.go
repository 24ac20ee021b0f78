package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/repair-sla-service/internal/auth"
	"github.com/spec-kit/repair-sla-service/internal/config"
	"github.com/spec-kit/repair-sla-service/internal/domain"
)

// IssueTokenCmd signs a bearer token with AUTH_JWT_SECRET for service
// accounts and support access.
func IssueTokenCmd() *cobra.Command {
	var (
		subject string
		shopID  string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Sign a bearer token for the shop endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if ttl == 0 {
				ttl = time.Duration(cfg.Auth.AccessTokenTTLMinutes) * time.Minute
			}

			token, expiresAt, err := auth.IssueToken(cfg.Auth.JWTSecret, auth.TokenRequest{
				Subject: subject,
				ShopID:  shopID,
				Role:    domain.Role(strings.ToUpper(role)),
				TTL:     ttl,
			}, time.Now())
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject (required)")
	cmd.Flags().StringVar(&shopID, "shop", "", "shop id, required unless --role admin")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleStaff), "staff, owner or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "lifetime, defaults to AUTH_ACCESS_TOKEN_TTL_MINUTES")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
