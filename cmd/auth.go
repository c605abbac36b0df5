package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/psds-microservice/arm-service-desk/internal/model"
	"github.com/psds-microservice/arm-service-desk/internal/session"
	"github.com/psds-microservice/arm-service-desk/internal/view"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var passwordFile string

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and remember the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(passwordFile)
		if err != nil {
			return err
		}
		c, err := openClient()
		if err != nil {
			return err
		}
		defer c.Close()

		sess, err := c.sessions.Establish(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Logged in as %s\n", heading(sess.Identity))
		if !opts.ephemeral {
			fmt.Fprintf(stderr, "Session saved to %s\n", cfg.Client.StatePath)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient()
		if err != nil {
			return err
		}
		defer c.Close()
		if err := c.sessions.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(stderr, "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the saved identity (no network call unless --ephemeral)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient()
		if err != nil {
			return err
		}
		defer c.Close()
		sess, err := c.restore(cmd.Context())
		if errors.Is(err, session.ErrNoSession) {
			if opts.ephemeral {
				return notLoggedIn()
			}
			return errors.New("not logged in")
		}
		if err != nil {
			return err
		}
		return render(stdout, sess.Identity, func(tw *tabwriter.Writer) {
			row(tw, "USER", "ROLE", "API")
			role := "user"
			if sess.Identity.IsAdmin {
				role = "admin"
			}
			row(tw, sess.Identity.Username, role, cfg.Client.APIURL)
		})
	},
}

func init() {
	loginCmd.Flags().StringVar(&passwordFile, "password-file", "", `read the password from a file ("-" or empty prompts)`)
}

func heading(id *model.Identity) string {
	if id.IsAdmin {
		return fmt.Sprintf("%s (%s)", id.Username, view.ForLocale(cfg.Client.Locale).Admin)
	}
	return id.Username
}

// readPassword reads from path, or prompts on the terminal with echo off.
// Piped stdin is read as one line.
func readPassword(path string) (string, error) {
	if path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		pw := strings.TrimRight(string(data), "\r\n")
		if pw == "" {
			return "", fmt.Errorf("file %s is empty", path)
		}
		return pw, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if err != nil {
				return "", fmt.Errorf("reading password from stdin: %w", err)
			}
			return "", errors.New("empty password on stdin")
		}
		return line, nil
	}
	fmt.Fprint(stderr, "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}
