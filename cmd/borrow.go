package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"elibrary/internal/bookclient"
	"elibrary/internal/borrow"
	"elibrary/pkg/domain"
)

func newBorrowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <book-id>",
		Short: "Borrow a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			outcome, err := a.coordinator.Borrow(cmd.Context(), bookID)
			if err != nil {
				if errors.Is(err, borrow.ErrRequestInFlight) {
					return nil
				}
				return fmt.Errorf("borrow request failed, please try again: %w", err)
			}
			if !outcome.OK {
				fmt.Println(outcome.Message)
				return nil
			}
			title := outcome.Loan.BookTitle
			if title == "" {
				title = fmt.Sprintf("book %d", bookID)
			}
			fmt.Printf("Borrowed %q, due %s.\n", title, outcome.Loan.DueAt.Local().Format("2006-01-02"))
			return a.showRefreshedViews(cmd.Context(), outcome.Refresh)
		},
	}
}

func newReturnCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "return <loan-id>",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid loan id %q", args[0])
			}

			outcome, err := a.coordinator.ReturnItem(cmd.Context(), loanID)
			if err != nil {
				if errors.Is(err, borrow.ErrRequestInFlight) {
					return nil
				}
				return fmt.Errorf("return request failed, please try again: %w", err)
			}
			if outcome.Canceled {
				fmt.Println("Return canceled.")
				return nil
			}
			if !outcome.OK {
				fmt.Printf("Return failed: %s\n", outcome.Message)
				return nil
			}
			fmt.Println("Book returned.")
			return a.showRefreshedViews(cmd.Context(), outcome.Refresh)
		},
	}
	cmd.Flags().BoolVarP(&a.assumeYes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newLoansCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "loans",
		Short: "List your borrowed books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loans, err := a.coordinator.MyLoans(cmd.Context())
			if errors.Is(err, borrow.ErrNotAuthenticated) {
				// Not an empty history; the state is simply unknown
				// until the user signs in.
				fmt.Println("Please sign in to view your borrowed books.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("fetch loans: %w", err)
			}
			printLoans(loans, false)
			return nil
		},
	}
}

// showRefreshedViews re-fetches the views the coordinator flagged. Server
// state is re-read instead of patching what we already have; independent
// views are fetched concurrently.
func (a *app) showRefreshedViews(ctx context.Context, views []borrow.View) error {
	var books []domain.Book
	var myLoans, allLoans []domain.LoanRecord
	var showBooks, showMine, showAll bool

	g, ctx := errgroup.WithContext(ctx)
	for _, view := range views {
		switch view {
		case borrow.ViewAvailability:
			showBooks = true
			g.Go(func() error {
				var err error
				books, err = a.books.Browse(ctx, bookclient.BrowseFilter{}, true)
				return err
			})
		case borrow.ViewMyLoans:
			showMine = true
			g.Go(func() error {
				var err error
				myLoans, err = a.coordinator.MyLoans(ctx)
				return err
			})
		case borrow.ViewAllLoans:
			showAll = true
			g.Go(func() error {
				var err error
				allLoans, err = a.coordinator.AllLoans(ctx)
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		fmt.Printf("Warning: could not refresh views: %v\n", err)
		return nil
	}

	if showBooks {
		fmt.Println("\nCatalog:")
		printBooks(books)
	}
	if showMine {
		fmt.Println("\nYour loans:")
		printLoans(myLoans, false)
	}
	if showAll {
		fmt.Println("\nAll loans:")
		printLoans(allLoans, true)
	}
	return nil
}

func printLoans(loans []domain.LoanRecord, withUser bool) {
	if len(loans) == 0 {
		fmt.Println("No loans.")
		return
	}
	if withUser {
		fmt.Printf("%-6s %-30s %-25s %-12s %-12s %s\n", "ID", "TITLE", "USER", "BORROWED", "DUE", "STATUS")
	} else {
		fmt.Printf("%-6s %-30s %-12s %-12s %s\n", "ID", "TITLE", "BORROWED", "DUE", "STATUS")
	}
	for _, l := range loans {
		status := string(l.Status)
		if l.Status == domain.LoanReturned && l.ReturnedAt != nil {
			status = fmt.Sprintf("RETURNED %s", l.ReturnedAt.Local().Format("2006-01-02"))
		}
		if withUser {
			fmt.Printf("%-6d %-30s %-25s %-12s %-12s %s\n",
				l.ID, truncate(l.BookTitle, 30), truncate(l.UserEmail, 25),
				l.BorrowedAt.Local().Format("2006-01-02"), l.DueAt.Local().Format("2006-01-02"), status)
		} else {
			fmt.Printf("%-6d %-30s %-12s %-12s %s\n",
				l.ID, truncate(l.BookTitle, 30),
				l.BorrowedAt.Local().Format("2006-01-02"), l.DueAt.Local().Format("2006-01-02"), status)
		}
	}
}
