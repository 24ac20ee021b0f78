package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/repair-sla-service/internal/auth"
)

// HashJobKeyCmd prints the bcrypt hash to put in AUTH_JOB_KEY_HASH.
func HashJobKeyCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-job-key [key|-]",
		Short: "Hash the key external schedulers send in X-Job-Key",
		Long:  "Prints the bcrypt hash for AUTH_JOB_KEY_HASH. Pass - to read the key from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if key == "-" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read key: %w", err)
				}
				key = strings.TrimSpace(string(raw))
			}
			if key == "" {
				return errors.New("job key is empty")
			}

			hashed, err := auth.HashJobKey(key, cost)
			if err != nil {
				return fmt.Errorf("failed to hash job key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hashed)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
