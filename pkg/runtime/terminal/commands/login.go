package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type LoginCmd struct {
	env      *Env
	email    string
	password string
}

func NewLoginCmd(env *Env) *cobra.Command {
	lc := &LoginCmd{env: env}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the growth backend and store the token in the profile",
		RunE:  lc.run,
	}

	cmd.Flags().StringVar(&lc.email, "email", "", "Account email")
	cmd.Flags().StringVar(&lc.password, "password", "", "Account password")

	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func (lc *LoginCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	c, err := lc.env.Client(ctx)
	if err != nil {
		return err
	}
	if _, err := c.Login(ctx, lc.email, lc.password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", lc.email)
	return nil
}

func NewLogoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := env.Client(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.Logout(); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
