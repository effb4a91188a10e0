package domain

import "time"

type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

type LoanStatus string

const (
	LoanBorrowed LoanStatus = "BORROWED"
	LoanReturned LoanStatus = "RETURNED"
	LoanOverdue  LoanStatus = "OVERDUE"
)

// User is the identity profile served by the auth service.
type User struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	PhoneNumber      string `json:"phoneNumber"`
	City             string `json:"city"`
	Roles            []Role `json:"roles"`
	RegistrationDate string `json:"registrationDate"`
	AccountNonLocked bool   `json:"accountNonLocked"`
}

// HasRole reports whether the profile carries the given role tag.
func (u User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the profile carries the admin role.
func (u User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

// LoanRecord is one borrow transaction as served by the borrowing service.
// The server is authoritative for every field; the client re-fetches after
// any mutation instead of patching local copies.
type LoanRecord struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"userId"`
	BookID     int64      `json:"bookId"`
	BookTitle  string     `json:"bookTitle"`
	BookAuthor string     `json:"bookAuthor"`
	UserName   string     `json:"userName"`
	UserEmail  string     `json:"userEmail"`
	BorrowedAt time.Time  `json:"borrowDate"`
	DueAt      time.Time  `json:"dueDate"`
	ReturnedAt *time.Time `json:"returnDate"`
	Status     LoanStatus `json:"status"`
}

// Active reports whether the loan still counts against the borrower.
func (l LoanRecord) Active() bool {
	return l.Status == LoanBorrowed || l.Status == LoanOverdue
}

// Book is a catalog entry with its availability counts. Zero available copies
// is a borrow precondition failure, not a reason to hide the book.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	PublishedDate   string `json:"publishedDate"`
	TotalCopies     int    `json:"numberOfCopies"`
	AvailableCopies int    `json:"availableCopies"`
	FilePath        string `json:"filePath"`
	FileStatus      string `json:"fileStatus"`
}
