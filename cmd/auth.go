package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"elibrary/internal/authclient"
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in and persist the session token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var email string
			var err error
			if len(args) == 1 {
				email = args[0]
			} else {
				email, err = readLine("Email: ")
				if err != nil {
					return err
				}
			}
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}

			result, err := a.sessions.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("unable to determine login outcome, please try again: %w", err)
			}
			if !result.OK {
				fmt.Printf("Login failed: %s\n", result.Reason)
				return nil
			}
			snap := a.sessions.Current()
			fmt.Printf("Signed in as %s <%s>\n", snap.Identity.Name, snap.Identity.Email)
			return nil
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard the persisted token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.sessions.Logout()
			fmt.Println("Signed out.")
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var reg authclient.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if reg.Name == "" {
				if reg.Name, err = readLine("Name: "); err != nil {
					return err
				}
			}
			if reg.Email == "" {
				if reg.Email, err = readLine("Email: "); err != nil {
					return err
				}
			}
			if reg.Name == "" || reg.Email == "" {
				fmt.Println("Name and email are required.")
				return nil
			}
			if reg.Password, err = readPassword("Password: "); err != nil {
				return err
			}
			if reg.Password == "" {
				fmt.Println("A password is required.")
				return nil
			}

			msg, err := a.auth.Register(cmd.Context(), reg)
			if err != nil {
				fmt.Printf("Registration failed: %v\n", err)
				return nil
			}
			if msg == "" {
				msg = "Registered. You can sign in now."
			}
			fmt.Println(msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.Name, "name", "", "full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	cmd.Flags().StringVar(&reg.PhoneNumber, "phone", "", "phone number")
	cmd.Flags().StringVar(&reg.City, "city", "", "city")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := a.sessions.Current()
			if !snap.Authenticated() {
				fmt.Println("Not signed in.")
				return nil
			}
			u := snap.Identity
			fmt.Printf("%s <%s>\n", u.Name, u.Email)
			fmt.Printf("Roles: %v\n", u.Roles)
			if u.City != "" {
				fmt.Printf("City: %s\n", u.City)
			}
			if u.PhoneNumber != "" {
				fmt.Printf("Phone: %s\n", u.PhoneNumber)
			}
			if exp, ok := a.sessions.TokenExpiry(); ok {
				fmt.Printf("Session expires: %s\n", exp.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
	}

	var name, phone, city string
	update := &cobra.Command{
		Use:   "update",
		Short: "Update profile contact fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := a.sessions.Current()
			if !snap.Authenticated() {
				fmt.Println("Please sign in first.")
				return nil
			}
			if name == "" {
				name = snap.Identity.Name
			}
			if phone == "" {
				phone = snap.Identity.PhoneNumber
			}
			if city == "" {
				city = snap.Identity.City
			}
			if _, err := a.auth.UpdateProfile(cmd.Context(), name, phone, city); err != nil {
				fmt.Printf("Update failed: %v\n", err)
				return nil
			}
			// Re-derive identity from the server rather than trusting the
			// response we just got.
			if err := a.sessions.RefreshIdentity(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Profile updated.")
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "full name")
	update.Flags().StringVar(&phone, "phone", "", "phone number")
	update.Flags().StringVar(&city, "city", "", "city")

	cmd.AddCommand(update)
	cmd.RunE = newWhoamiCmd(a).RunE
	return cmd
}

func newChangePasswordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "change-password",
		Short: "Change the password for the current account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.sessions.Current().Authenticated() {
				fmt.Println("Please sign in first.")
				return nil
			}
			current, err := readPassword("Current password: ")
			if err != nil {
				return err
			}
			next, err := readPassword("New password: ")
			if err != nil {
				return err
			}
			if next == "" {
				fmt.Println("A new password is required.")
				return nil
			}
			if err := a.auth.ChangePassword(cmd.Context(), current, next); err != nil {
				fmt.Printf("Password change failed: %v\n", err)
				return nil
			}
			fmt.Println("Password changed.")
			return nil
		},
	}
}
