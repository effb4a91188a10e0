package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"elibrary/internal/bookclient"
)

// Admin commands rely on the server's role enforcement; the client shows
// them regardless and an authorization failure runs the usual interceptor
// path.
func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative views and catalog management",
	}
	cmd.AddCommand(
		newAdminLoansCmd(a),
		newAdminUsersCmd(a),
		newAdminBooksCmd(a),
	)
	return cmd
}

func newAdminLoansCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "loans",
		Short: "List all loan records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loans, err := a.coordinator.AllLoans(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch all loans: %w", err)
			}
			printLoans(loans, true)
			return nil
		},
	}
}

func newAdminUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.auth.AdminListUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch users: %w", err)
			}
			if len(users) == 0 {
				fmt.Println("No users.")
				return nil
			}
			fmt.Printf("%-6s %-25s %-30s %-10s %s\n", "ID", "NAME", "EMAIL", "LOCKED", "ROLES")
			for _, u := range users {
				fmt.Printf("%-6d %-25s %-30s %-10t %v\n", u.ID, truncate(u.Name, 25), truncate(u.Email, 30), !u.AccountNonLocked, u.Roles)
			}
			return nil
		},
	}

	restrict := &cobra.Command{
		Use:   "restrict <user-id>",
		Short: "Lock a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			if err := a.auth.AdminRestrictUser(cmd.Context(), id); err != nil {
				fmt.Printf("Restrict failed: %v\n", err)
				return nil
			}
			fmt.Println("Account locked.")
			return nil
		},
	}

	activate := &cobra.Command{
		Use:   "activate <user-id>",
		Short: "Unlock a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			if err := a.auth.AdminActivateUser(cmd.Context(), id); err != nil {
				fmt.Printf("Activate failed: %v\n", err)
				return nil
			}
			fmt.Println("Account unlocked.")
			return nil
		},
	}

	cmd.AddCommand(list, restrict, activate)
	return cmd
}

func newAdminBooksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Manage catalog entries",
	}

	var req bookclient.BookRequest
	addFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&req.Title, "title", "", "book title")
		c.Flags().StringVar(&req.Author, "author", "", "book author")
		c.Flags().StringVar(&req.Genre, "genre", "", "genre")
		c.Flags().StringVar(&req.PublishedDate, "published", "", "published date (YYYY-MM-DD)")
		c.Flags().IntVar(&req.TotalCopies, "copies", 1, "number of copies")
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a catalog entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Title == "" || req.Author == "" {
				fmt.Println("Title and author are required.")
				return nil
			}
			book, err := a.books.AdminAddBook(cmd.Context(), req)
			if err != nil {
				fmt.Printf("Add failed: %v\n", err)
				return nil
			}
			fmt.Printf("Added book %d: %s\n", book.ID, book.Title)
			return nil
		},
	}
	addFlags(add)

	update := &cobra.Command{
		Use:   "update <book-id>",
		Short: "Update a catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}
			book, err := a.books.AdminUpdateBook(cmd.Context(), id, req)
			if err != nil {
				fmt.Printf("Update failed: %v\n", err)
				return nil
			}
			fmt.Printf("Updated book %d: %s\n", book.ID, book.Title)
			return nil
		},
	}
	addFlags(update)

	del := &cobra.Command{
		Use:   "delete <book-id>",
		Short: "Delete a catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}
			if !a.confirmPrompt("Delete this catalog entry?") {
				fmt.Println("Delete canceled.")
				return nil
			}
			if err := a.books.AdminDeleteBook(cmd.Context(), id); err != nil {
				fmt.Printf("Delete failed: %v\n", err)
				return nil
			}
			fmt.Println("Book deleted.")
			return nil
		},
	}
	del.Flags().BoolVarP(&a.assumeYes, "yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(add, update, del)
	return cmd
}
