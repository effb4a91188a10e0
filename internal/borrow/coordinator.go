// Package borrow orchestrates borrow and return intents against the
// borrowing service, translates server outcomes into a closed set of
// user-facing reasons, and signals which views must re-fetch. The server is
// authoritative for availability and loan state; the client never patches
// local copies.
package borrow

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"elibrary/internal/borrowclient"
	"elibrary/internal/session"
	"elibrary/pkg/domain"
)

// Reason classifies why a borrow intent did not produce a loan.
type Reason string

const (
	ReasonNotAuthenticated Reason = "NOT_AUTHENTICATED"
	ReasonAlreadyBorrowed  Reason = "ALREADY_BORROWED"
	ReasonNoCopies         Reason = "NO_COPIES_AVAILABLE"
	ReasonItemNotFound     Reason = "ITEM_NOT_FOUND"
	ReasonNotAuthorized    Reason = "NOT_AUTHORIZED"
	ReasonUnknown          Reason = "UNKNOWN"
)

// View names a screen that must re-fetch from the server after a mutation.
type View string

const (
	ViewAvailability View = "availability"
	ViewMyLoans      View = "my-loans"
	ViewAllLoans     View = "all-loans"
)

// ErrRequestInFlight rejects a mutation while another one is outstanding.
// The triggering affordance should stay disabled for the duration; this
// guard is the backstop against rapid repeated submissions.
var ErrRequestInFlight = errors.New("another request is in flight")

// BorrowOutcome is the result of a borrow intent. On success Loan is the
// created record and Refresh lists the views to re-fetch. On failure Reason
// is set and Message carries human-readable wording, verbatim from the
// server for unrecognized rejections.
type BorrowOutcome struct {
	OK      bool
	Loan    domain.LoanRecord
	Reason  Reason
	Message string
	Refresh []View
}

// ReturnOutcome is the result of a return intent. Canceled means the user
// declined the confirmation and no request was sent.
type ReturnOutcome struct {
	OK       bool
	Canceled bool
	Loan     domain.LoanRecord
	Message  string
	Refresh  []View
}

// ConfirmFunc asks the user to confirm an irreversible action.
type ConfirmFunc func(prompt string) bool

// LoanAPI is the slice of the borrow client the coordinator needs.
type LoanAPI interface {
	Borrow(ctx context.Context, bookID, userID int64) (domain.LoanRecord, error)
	Return(ctx context.Context, loanID int64) (domain.LoanRecord, error)
	MyLoans(ctx context.Context) ([]domain.LoanRecord, error)
	AllLoans(ctx context.Context) ([]domain.LoanRecord, error)
}

// Coordinator executes borrow/return intents for the current session.
type Coordinator struct {
	sessions *session.Manager
	loans    LoanAPI
	confirm  ConfirmFunc
	inflight atomic.Bool
}

// NewCoordinator wires the coordinator to the session manager and loan API.
// confirm guards returns; nil confirms unconditionally (used by callers that
// confirmed upstream).
func NewCoordinator(sessions *session.Manager, loans LoanAPI, confirm ConfirmFunc) *Coordinator {
	if confirm == nil {
		confirm = func(string) bool { return true }
	}
	return &Coordinator{sessions: sessions, loans: loans, confirm: confirm}
}

// Borrow requests a loan for the given book. Unauthenticated intents are
// rejected locally without touching the network. Transport failures
// propagate as errors; everything else lands in the outcome.
func (c *Coordinator) Borrow(ctx context.Context, bookID int64) (BorrowOutcome, error) {
	snap := c.sessions.Current()
	if !snap.Authenticated() {
		return BorrowOutcome{
			Reason:  ReasonNotAuthenticated,
			Message: "Please sign in to borrow a book.",
		}, nil
	}
	if !c.inflight.CompareAndSwap(false, true) {
		return BorrowOutcome{}, ErrRequestInFlight
	}
	defer c.inflight.Store(false)

	loan, err := c.loans.Borrow(ctx, bookID, snap.Identity.ID)
	if err != nil {
		return classifyBorrowError(err)
	}
	return BorrowOutcome{
		OK:      true,
		Loan:    loan,
		Refresh: []View{ViewAvailability, ViewMyLoans},
	}, nil
}

// ReturnItem marks a loan as returned after an explicit, cancelable
// confirmation. Returns are irreversible, so declining sends nothing. On
// failure the server message surfaces verbatim; return rejections are rarer
// and less structured than borrow ones.
func (c *Coordinator) ReturnItem(ctx context.Context, loanID int64) (ReturnOutcome, error) {
	snap := c.sessions.Current()
	if !snap.Authenticated() {
		return ReturnOutcome{Message: "Please sign in first."}, nil
	}
	if !c.confirm("Are you sure you want to return this book?") {
		return ReturnOutcome{Canceled: true}, nil
	}
	if !c.inflight.CompareAndSwap(false, true) {
		return ReturnOutcome{}, ErrRequestInFlight
	}
	defer c.inflight.Store(false)

	loan, err := c.loans.Return(ctx, loanID)
	if err != nil {
		var apiErr *borrowclient.APIError
		if errors.As(err, &apiErr) {
			return ReturnOutcome{Message: apiErr.Message}, nil
		}
		return ReturnOutcome{}, err
	}
	refresh := []View{ViewMyLoans}
	if snap.IsAdmin() {
		refresh = append(refresh, ViewAllLoans)
	}
	return ReturnOutcome{OK: true, Loan: loan, Refresh: refresh}, nil
}

// MyLoans fetches the authenticated user's loan history. While the session
// is unresolved or anonymous the caller must show a waiting or "please sign
// in" state, so the rejection is local and no request is issued.
func (c *Coordinator) MyLoans(ctx context.Context) ([]domain.LoanRecord, error) {
	if !c.sessions.Current().Authenticated() {
		return nil, ErrNotAuthenticated
	}
	return c.loans.MyLoans(ctx)
}

// AllLoans fetches every loan record for the admin overview. The role check
// is the server's job; an authorization failure here runs the usual
// interceptor path.
func (c *Coordinator) AllLoans(ctx context.Context) ([]domain.LoanRecord, error) {
	return c.loans.AllLoans(ctx)
}

// ErrNotAuthenticated rejects protected reads before any network call.
var ErrNotAuthenticated = errors.New("not authenticated")

func classifyBorrowError(err error) (BorrowOutcome, error) {
	var apiErr *borrowclient.APIError
	if !errors.As(err, &apiErr) {
		return BorrowOutcome{}, err
	}
	msg := apiErr.Message
	lower := strings.ToLower(msg)
	switch {
	case apiErr.Status == 401 || apiErr.Status == 403:
		// The transport hook has already run the interceptor path.
		return BorrowOutcome{
			Reason:  ReasonNotAuthorized,
			Message: "You need to be signed in and authorized to borrow books.",
		}, nil
	case apiErr.Status == 404:
		return BorrowOutcome{
			Reason:  ReasonItemNotFound,
			Message: "Book not found or no longer available.",
		}, nil
	case strings.Contains(lower, "already borrowed"):
		// Covers both server wordings ("this book" / "a copy of this book").
		return BorrowOutcome{
			Reason:  ReasonAlreadyBorrowed,
			Message: "You already have this book borrowed. Return it before borrowing again.",
		}, nil
	case strings.Contains(lower, "no copies available") || strings.Contains(lower, "not currently available"):
		return BorrowOutcome{
			Reason:  ReasonNoCopies,
			Message: "Sorry, no copies of this book are currently available.",
		}, nil
	default:
		// Surface unmatched rejections verbatim so new server rules stay
		// visible to the user.
		return BorrowOutcome{Reason: ReasonUnknown, Message: msg}, nil
	}
}
