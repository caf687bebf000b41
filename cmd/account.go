package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/lma/internal/model"
)

var (
	loginUsername string
	loginEmail    string
	loginPassword string

	registerUsername        string
	registerEmail           string
	registerPassword        string
	registerPasswordConfirm string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store API tokens",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget stored tokens and the local cache",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginUsername, "username", "", "Username")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email (instead of username)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted when omitted)")

	registerCmd.Flags().StringVar(&registerUsername, "username", "", "Username")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password")
	registerCmd.Flags().StringVar(&registerPasswordConfirm, "password-confirm", "", "Password again (defaults to --password)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	creds := model.Credentials{
		Username: strings.TrimSpace(loginUsername),
		Email:    strings.TrimSpace(loginEmail),
		Password: loginPassword,
	}
	if (creds.Username == "" && creds.Email == "") || creds.Password == "" {
		identity := creds.Username
		if identity == "" {
			identity = creds.Email
		}
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Username or email").Value(&identity),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&creds.Password),
			),
		)
		if err := form.Run(); err != nil {
			exitErr(1, fmt.Errorf("login cancelled: %w", err))
		}
		creds.Username, creds.Email = splitIdentity(strings.TrimSpace(identity))
	}

	e := openEnv(commandContext(cmd))
	defer e.close()

	user, err := e.authService().Login(e.ctx, creds)
	if err != nil {
		exitErr(exitCode(err), err)
	}
	if user == nil {
		exitErr(1, fmt.Errorf("login succeeded but the server rejected the new token"))
	}

	// Start from the server's view of this account.
	if err := e.cache.ClearState(); err != nil {
		exitErr(2, err)
	}
	syncAfterLogin(e)

	fmt.Printf("Logged in as %s\n", user.Username)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	reg := model.Registration{
		Username:        strings.TrimSpace(registerUsername),
		Email:           strings.TrimSpace(registerEmail),
		Password:        registerPassword,
		PasswordConfirm: registerPasswordConfirm,
	}
	if reg.Username == "" || reg.Email == "" || reg.Password == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Username").Value(&reg.Username),
				huh.NewInput().Title("Email").Value(&reg.Email),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&reg.Password),
				huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&reg.PasswordConfirm),
			),
		)
		if err := form.Run(); err != nil {
			exitErr(1, fmt.Errorf("registration cancelled: %w", err))
		}
	} else if reg.PasswordConfirm == "" {
		reg.PasswordConfirm = reg.Password
	}

	e := openEnv(commandContext(cmd))
	defer e.close()

	user, err := e.authService().Register(e.ctx, reg)
	if err != nil {
		exitErr(exitCode(err), err)
	}
	if err := e.cache.ClearState(); err != nil {
		exitErr(2, err)
	}
	if user != nil {
		syncAfterLogin(e)
		fmt.Printf("Registered and logged in as %s\n", user.Username)
		return nil
	}
	fmt.Printf("Registered %s. Run: lma login\n", reg.Username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	e := openEnv(commandContext(cmd))
	defer e.close()

	if err := e.authService().Logout(); err != nil {
		exitErr(2, err)
	}
	e.focus.Clear()
	if err := e.cache.ClearState(); err != nil {
		exitErr(2, err)
	}
	fmt.Println("Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	e := openEnv(commandContext(cmd))
	defer e.close()

	user, err := e.authService().Me(e.ctx)
	if err != nil {
		exitErr(exitCode(err), err)
	}
	if user == nil {
		fmt.Fprintln(os.Stderr, "Not logged in.")
		os.Exit(1)
	}
	fmt.Printf("%s <%s> (id %d)\n", user.Username, user.Email, user.ID)
	return nil
}

// syncAfterLogin fills the cache for the new account. A failure is only a
// warning: the next command fetches again.
func syncAfterLogin(e *env) {
	if err := e.focus.FetchAll(e.ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load focus sessions: %v\n", err)
		return
	}
	e.saveFocus()
}

// splitIdentity treats anything with an @ as an email address.
func splitIdentity(identity string) (username, email string) {
	if strings.Contains(identity, "@") {
		return "", identity
	}
	return identity, ""
}
