package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/dsp-console/domain"
)

const genericLoginFailure = "login failed"

func newLoginCommand(st *state) *cobra.Command {
	var (
		username      string
		password      string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Username: ")
				line, err := readLine(in)
				if err != nil {
					return err
				}
				username = line
			}
			if passwordStdin || password == "" {
				if !passwordStdin {
					fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				}
				line, err := readLine(in)
				if err != nil {
					return err
				}
				password = line
			}
			if username == "" || password == "" {
				return domain.WrapError(domain.ErrCodeInvalid, "username and password are required", nil)
			}

			if err := st.app.session.Login(cmd.Context(), username, password); err != nil {
				if errors.Is(err, domain.ErrAuthenticationFailed) {
					return domain.NewError(domain.ErrCodeUnauthorized, domain.Reason(err, genericLoginFailure))
				}
				return err
			}
			id := st.app.session.Identity()
			fmt.Fprintf(st.stdout(), "Logged in as %s (%s)\n", id.DisplayName(), id.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newLogoutCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.app.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(st.stdout(), "Logged out")
			return nil
		},
	}
}

func newWhoAmICommand(st *state) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if refresh {
				if _, err := st.app.profile.Refresh(cmd.Context()); err != nil {
					return err
				}
			}
			snap := st.app.session.Snapshot()
			return st.printer().identity(snap.Identity, snap)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the identity from the backend")
	return protected(cmd)
}

func newRegisterCommand(st *state) *cobra.Command {
	var (
		reg           domain.Registration
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				line, err := readLine(bufio.NewReader(cmd.InOrStdin()))
				if err != nil {
					return err
				}
				reg.Password = line
			}
			created, err := st.app.api.Register(cmd.Context(), reg)
			if err != nil {
				var apiErr *domain.APIError
				if errors.As(err, &apiErr) {
					return domain.NewError(domain.CodeForStatus(apiErr.Status), domain.Reason(err, "registration failed"))
				}
				return err
			}
			fmt.Fprintf(st.stdout(), "Account %s created. Run `%s login` to sign in.\n", created.Username, st.app.cfg.AppName)
			return nil
		},
	}
	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "account username")
	cmd.Flags().StringVar(&reg.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&reg.FullName, "full-name", "", "display name")
	cmd.Flags().StringVar(&reg.Role, "role", domain.DefaultRegistrationRole, "account role")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "account password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
