package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"elibrary/internal/bookclient"
	"elibrary/pkg/domain"
)

func newBooksCmd(a *app) *cobra.Command {
	var filter bookclient.BrowseFilter
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Browse the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := a.books.Browse(cmd.Context(), filter, a.sessions.Current().Authenticated())
			if err != nil {
				return fmt.Errorf("fetch books: %w", err)
			}
			printBooks(books)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Query, "query", "", "search title, author, or genre")
	cmd.Flags().StringVar(&filter.Genre, "genre", "", "filter by genre")
	cmd.Flags().StringVar(&filter.Author, "author", "", "filter by author")
	return cmd
}

func printBooks(books []domain.Book) {
	if len(books) == 0 {
		fmt.Println("No books found.")
		return
	}
	fmt.Printf("%-6s %-35s %-25s %-15s %s\n", "ID", "TITLE", "AUTHOR", "GENRE", "AVAILABLE")
	for _, b := range books {
		availability := fmt.Sprintf("%d/%d", b.AvailableCopies, b.TotalCopies)
		if b.AvailableCopies <= 0 {
			// Keep the row visible; borrowing it will fail, not disappear.
			availability = "none available"
		}
		fmt.Printf("%-6d %-35s %-25s %-15s %s\n", b.ID, truncate(b.Title, 35), truncate(b.Author, 25), truncate(b.Genre, 15), availability)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
