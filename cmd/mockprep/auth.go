package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mockprep/mockprep-go/internal/model"
	"github.com/mockprep/mockprep-go/internal/session"
)

type credentials struct {
	email    string
	password string
}

func (c *credentials) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.email, "email", "", "Account email")
	cmd.Flags().StringVar(&c.password, "password", "", "Account password (prompted when empty)")
}

func (c *credentials) complete(a *app) error {
	var err error
	if c.email == "" {
		if c.email, err = a.readLine("Email: "); err != nil {
			return err
		}
	}
	if c.password == "" {
		if c.password, err = a.readLine("Password: "); err != nil {
			return err
		}
	}
	if c.email == "" || c.password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

func printUser(a *app, u *model.User) {
	fmt.Fprintf(a.out, "Signed in as %s <%s> (%s)\n", u.Name, u.Email, u.UserType)
}

func loginCmd(a *app) *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.complete(a); err != nil {
				return err
			}
			user, err := a.session.Login(cmd.Context(), creds.email, creds.password)
			if err != nil {
				return errors.New(session.ErrorMessage(err))
			}
			printUser(a, user)
			return nil
		},
	}
	creds.bind(cmd)
	return cmd
}

func registerCmd(a *app) *cobra.Command {
	var (
		creds    credentials
		name     string
		userType string
		googleID string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.complete(a); err != nil {
				return err
			}
			user, err := a.session.Register(cmd.Context(), session.RegisterInput{
				Email:    creds.email,
				Password: creds.password,
				Name:     name,
				UserType: userType,
				GoogleID: googleID,
			})
			if err != nil {
				return errors.New(session.ErrorMessage(err))
			}
			printUser(a, user)
			return nil
		},
	}
	creds.bind(cmd)
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&userType, "type", model.UserTypeCandidate, "Account type (candidate, expert, hr)")
	cmd.Flags().StringVar(&googleID, "google-id", "", "Google account id from google-login")
	return cmd
}

func googleLoginCmd(a *app) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "google-login",
		Short: "Sign in with a Google OAuth access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return errors.New("--token is required")
			}
			res, err := a.session.GoogleLogin(cmd.Context(), token)
			if err != nil {
				return errors.New(session.ErrorMessage(err))
			}
			if res.Success {
				printUser(a, res.User)
				return nil
			}
			if res.GoogleData == nil {
				return errors.New("google account is not registered")
			}
			g := res.GoogleData
			fmt.Fprintf(a.out, "No account for %s yet. Register with:\n", g.Email)
			fmt.Fprintf(a.out, "  mockprep register --email %q --name %q --google-id %q\n", g.Email, g.Name, g.GoogleID)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Google OAuth access token")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Init(cmd.Context())
			a.session.Logout(cmd.Context())
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			return a.printJSON(a.session.User())
		},
	}
}

// verifyAdminCmd signs in, checks for an admin role and signs out again.
func verifyAdminCmd(a *app) *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:   "verify-admin",
		Short: "Check that an account holds an admin role",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.complete(a); err != nil {
				return err
			}
			ctx := cmd.Context()
			user, err := a.session.Login(ctx, creds.email, creds.password)
			if err != nil {
				return errors.New(session.ErrorMessage(err))
			}
			defer a.session.Logout(ctx)

			if !user.IsAdmin() {
				return fmt.Errorf("%s is a %s account, not an admin", user.Email, user.UserType)
			}
			fmt.Fprintf(a.out, "Admin verified: %s (%s)\n", user.Email, user.UserType)
			return nil
		},
	}
	creds.bind(cmd)
	return cmd
}
