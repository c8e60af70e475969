package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shoplead/shoplead_server/internal/pkg/jwt"
)

func newTokenCmd(root *rootOptions) *cobra.Command {
	var (
		userID int64
		hours  int
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token for write endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return errors.New("jwt.secret is not configured")
			}
			if hours <= 0 {
				hours = cfg.JWT.ExpireHours
			}

			token, err := jwt.GenerateToken(userID, cfg.JWT.Secret, hours)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 1, "operator id embedded in the token")
	cmd.Flags().IntVar(&hours, "hours", 0, "validity in hours (default jwt.expire_hours)")
	return cmd
}
