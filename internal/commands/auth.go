package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pembukuan-dev/pembukuan/internal/activitylog"
	"github.com/pembukuan-dev/pembukuan/internal/config"
	"github.com/pembukuan-dev/pembukuan/internal/ledgerapi"
	"github.com/pembukuan-dev/pembukuan/internal/model"
	"github.com/pembukuan-dev/pembukuan/internal/session"
)

func newLoginCommand(opts *globalOptions) *cobra.Command {
	var nib, email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session for the profile",
		Long: "Log in with --nib (umkm profile) or --email (admin profile). " +
			"The password is read from stdin when --password is omitted.",
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			if password == "" {
				p, err := readLine(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = p
			}
			return runLogin(cmd, a, nib, email, password)
		}),
	}

	cmd.Flags().StringVar(&nib, "nib", "", "business identification number (umkm profile)")
	cmd.Flags().StringVar(&email, "email", "", "admin email (admin profile)")
	cmd.Flags().StringVar(&password, "password", "", "password")

	return cmd
}

func runLogin(cmd *cobra.Command, a *app, nib, email, password string) error {
	ctx := cmd.Context()
	c := a.anonClient()

	var (
		sess *session.Session
		err  error
	)
	switch a.profile {
	case config.ProfileUMKM:
		if nib == "" {
			return errors.New("--nib is required for the umkm profile")
		}
		var login ledgerapi.UMKMLogin
		if login, err = c.LoginUMKM(ctx, nib, password); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if sess, err = session.New(a.profile, session.RoleUMKM, login.Token, login.UMKM.Name); err != nil {
			return err
		}
		sess.EntityID = login.UMKM.ID
	case config.ProfileAdmin:
		if email == "" {
			return errors.New("--email is required for the admin profile")
		}
		var login ledgerapi.AdminLogin
		if login, err = c.LoginAdmin(ctx, email, password); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if sess, err = session.New(a.profile, session.RoleAdmin, login.Token, login.Admin.Name); err != nil {
			return err
		}
		sess.EntityID = login.Admin.ID
	}

	if err := a.sessions.Begin(ctx, sess); err != nil {
		return err
	}
	a.record(ctx, activitylog.ActionLogin, sess.Name, sess.EntityID)
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", sess.Name, a.profile)
	return nil
}

func newLogoutCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the profile's session",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			c, err := a.client(ctx)
			if errors.Is(err, session.ErrNoSession) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err == nil && c.Session().Role == session.RoleUMKM {
				// The local session ends even if revocation fails.
				if err := c.LogoutUMKM(ctx); err != nil && !errors.Is(err, ledgerapi.ErrUnauthorized) {
					warn(cmd.ErrOrStderr(), err)
				}
			}
			if err := a.sessions.End(ctx, a.profile); err != nil {
				return err
			}
			a.record(ctx, activitylog.ActionLogout, "", 0)
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		}),
	}
}

func newWhoamiCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the profile's session",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			s, err := a.sessions.Current(cmd.Context(), a.profile)
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			row(w, "Profile:", s.Profile)
			row(w, "Role:", s.Role)
			row(w, "Name:", s.Name)
			if s.EntityID != 0 {
				row(w, "ID:", s.EntityID)
			}
			row(w, "Since:", s.CreatedAt.Local().Format(time.DateTime))
			if !s.ExpiresAt.IsZero() {
				row(w, "Expires:", s.ExpiresAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		}),
	}
}

func newRegisterCommand(opts *globalOptions) *cobra.Command {
	var reg model.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new UMKM for admin approval",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			if a.profile != config.ProfileUMKM {
				return errors.New("register uses the umkm profile")
			}
			if reg.Password == "" {
				p, err := readLine(cmd, "Password: ")
				if err != nil {
					return err
				}
				reg.Password = p
			}
			reg.PasswordConfirmation = reg.Password

			ctx := cmd.Context()
			if err := a.anonClient().RegisterUMKM(ctx, reg); err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			a.record(ctx, activitylog.ActionRegister, reg.Name, 0)
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s; wait for admin approval before logging in\n", reg.Name)
			return nil
		}),
	}

	registrationFlags(cmd, &reg)
	cmd.Flags().StringVar(&reg.Password, "password", "", "password")
	return cmd
}

// registrationFlags binds the profile fields of a UMKM registration.
func registrationFlags(cmd *cobra.Command, reg *model.Registration) {
	f := cmd.Flags()
	f.StringVar(&reg.Name, "name", "", "business name (required)")
	f.StringVar(&reg.NIB, "nib", "", "business identification number (required)")
	f.StringVar(&reg.Address, "address", "", "address")
	f.StringVar(&reg.PIRT, "pirt", "", "home industry food permit number")
	f.StringVar(&reg.Phone, "phone", "", "phone number")
	f.StringVar(&reg.Category, "category", "", "business category")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("nib")
}

func readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	sc := bufio.NewScanner(cmd.InOrStdin())
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return "", errors.New("no input")
	}
	return strings.TrimSpace(sc.Text()), nil
}
