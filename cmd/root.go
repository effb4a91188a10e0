package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"elibrary/internal/authclient"
	"elibrary/internal/bookclient"
	"elibrary/internal/borrow"
	"elibrary/internal/borrowclient"
	"elibrary/internal/config"
	"elibrary/internal/session"
	"elibrary/internal/tokenstore"
	"elibrary/internal/transport"
	"elibrary/internal/util"
)

// app holds the wired core shared by all subcommands.
type app struct {
	cfg         config.FileConfig
	sessions    *session.Manager
	auth        *authclient.Client
	books       *bookclient.Client
	coordinator *borrow.Coordinator
	assumeYes   bool
}

// NewRootCmd builds the command tree. The core is wired and the persisted
// session re-validated before any subcommand runs, so protected commands can
// trust session state.
func NewRootCmd() *cobra.Command {
	a := &app{}
	var configPath string

	root := &cobra.Command{
		Use:   "elibrary",
		Short: "Command-line client for the e-library lending service",
		Long: `elibrary lets you browse the catalog, borrow and return books, and manage
users and catalog entries as an administrator. Sign in once; the session
token is persisted until you sign out or the server rejects it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors).
			_ = godotenv.Load()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			util.InitLogger(cfg.LogLevel)
			if err := a.wire(); err != nil {
				return err
			}
			if err := a.sessions.Initialize(cmd.Context()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not verify saved session: %v\n", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newRegisterCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),
		newChangePasswordCmd(a),
		newBooksCmd(a),
		newBorrowCmd(a),
		newReturnCmd(a),
		newLoansCmd(a),
		newAdminCmd(a),
	)
	return root
}

func (a *app) wire() error {
	timeout, err := config.ParseRequestTimeout(a.cfg.RequestTimeout)
	if err != nil {
		return err
	}

	var store tokenstore.Store
	switch a.cfg.TokenStore {
	case "redis":
		store = tokenstore.NewRedisStore(a.cfg.RedisAddr, a.cfg.RedisPassword)
	default:
		store, err = tokenstore.NewFileStore(a.cfg.TokenPath)
		if err != nil {
			return err
		}
	}

	notify := func(msg string) { fmt.Fprintln(os.Stderr, msg) }

	public := transport.NewPublic(timeout)
	// The manager is both the token source and the auth-failure hook for
	// the authorized client it depends on; wire() closes that cycle.
	var sessions *session.Manager
	authorized := transport.NewAuthorized(timeout,
		tokenSourceFunc(func() string { return sessions.Token() }),
		func() { sessions.HandleAuthFailure() },
	)

	auth := authclient.NewClient(a.cfg.APIBaseURL, public, authorized)
	sessions = session.NewManager(store, auth, notify)

	a.sessions = sessions
	a.auth = auth
	a.books = bookclient.NewClient(a.cfg.APIBaseURL, public, authorized)
	loans := borrowclient.NewClient(a.cfg.APIBaseURL, authorized)
	a.coordinator = borrow.NewCoordinator(sessions, loans, a.confirmPrompt)
	return nil
}

type tokenSourceFunc func() string

func (f tokenSourceFunc) Token() string { return f() }

// confirmPrompt asks on the terminal unless --yes was given.
func (a *app) confirmPrompt(prompt string) bool {
	if a.assumeYes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// readPassword reads a masked password from the terminal.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

// readLine prompts for a single line of input.
func readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return "", scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()), nil
}
