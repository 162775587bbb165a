package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-memora/pkg/prompt"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := c.ask(ctx, &email, "Email", false); err != nil {
				return err
			}
			if err := c.ask(ctx, &password, "Password", true); err != nil {
				return err
			}
			sessions, err := c.sessions()
			if err != nil {
				return err
			}
			state, err := sessions.Login(ctx, email, password)
			if err != nil {
				return failureMessage(err)
			}
			c.printf("Signed in as %s\n", state.User.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := c.ask(ctx, &name, "Name", false); err != nil {
				return err
			}
			if err := c.ask(ctx, &email, "Email", false); err != nil {
				return err
			}
			if err := c.ask(ctx, &password, "Password", true); err != nil {
				return err
			}
			sessions, err := c.sessions()
			if err != nil {
				return err
			}
			state, err := sessions.Register(ctx, name, email, password)
			if err != nil {
				return failureMessage(err)
			}
			c.printf("Welcome, %s\n", state.User.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := c.sessions()
			if err != nil {
				return err
			}
			if err := sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			c.printf("Signed out\n")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := c.sessions()
			if err != nil {
				return err
			}
			user, err := sessions.Current(cmd.Context())
			if err != nil {
				return err
			}
			if user == nil {
				c.printf("Not signed in\n")
				return nil
			}
			c.printf("%s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
}

// ask prompts for *value when it was not given as a flag.
func (c *cli) ask(ctx context.Context, value *string, label string, secret bool) error {
	if *value != "" {
		return nil
	}
	answer, err := c.driver.Text(ctx, prompt.TextPrompt{Label: label, Secret: secret})
	if errors.Is(err, prompt.ErrAborted) {
		return errors.New("cancelled")
	}
	if err != nil {
		return err
	}
	*value = answer
	return nil
}
