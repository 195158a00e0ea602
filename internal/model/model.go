package model

import (
	"github.com/google/uuid"
)

// Book is one lendable copy in the catalog. Lending state is not stored:
// it is derived from the two timestamps (see Available and Borrowed).
// Version is the optimistic-concurrency token, bumped by the store on
// every successful conditional update.
type Book struct {
	ID               int64    `json:"id" db:"id"`
	ISBN             string   `json:"isbn" db:"isbn" validate:"required,isbn"`
	Title            string   `json:"title" db:"title" validate:"required"`
	Author           string   `json:"author" db:"author" validate:"required"`
	Price            *float64 `json:"price" db:"price" validate:"omitempty,gt=0"`
	BorrowTime       *Instant `json:"borrowTime" db:"borrow_time"`
	ReturnTime       *Instant `json:"returnTime" db:"return_time"`
	CreatedDate      Instant  `json:"createdDate" db:"created_date"`
	LastModifiedDate Instant  `json:"lastModifiedDate" db:"last_modified_date"`
	Version          int      `json:"version" db:"version"`
}

// Available and Borrowed are mutually exclusive and exhaustive.

func (b Book) Available() bool {
	return b.BorrowTime == nil || b.ReturnTime != nil
}

func (b Book) Borrowed() bool {
	return b.BorrowTime != nil && b.ReturnTime == nil
}

// WithBorrowTime returns a copy checked out at t. The return time is
// cleared so the copy transitions to Borrowed.
func (b Book) WithBorrowTime(t Instant) Book {
	b.BorrowTime = &t
	b.ReturnTime = nil
	return b
}

// WithReturnTime returns a copy checked back in at t.
func (b Book) WithReturnTime(t Instant) Book {
	b.ReturnTime = &t
	return b
}

type Task struct {
	TaskID           uuid.UUID `json:"taskId" db:"task_id"`
	Name             string    `json:"name" db:"name" validate:"required"`
	Description      string    `json:"description" db:"description"`
	Tags             string    `json:"tags" db:"tags"`
	StartTime        *Instant  `json:"startTime" db:"start_time"`
	EndTime          *Instant  `json:"endTime" db:"end_time"`
	Deadline         *Instant  `json:"deadline" db:"deadline"`
	TenantID         string    `json:"tenantId" db:"tenant_id"`
	CreatedDate      Instant   `json:"createdDate" db:"created_date"`
	LastModifiedDate Instant   `json:"lastModifiedDate" db:"last_modified_date"`
}

type Tenant struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name" validate:"required"`
	Description      string    `json:"description" db:"description"`
	Email            string    `json:"email" db:"email" validate:"omitempty,email"`
	CreatedDate      Instant   `json:"createdDate" db:"created_date"`
	LastModifiedDate Instant   `json:"lastModifiedDate" db:"last_modified_date"`
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListTasks struct {
	Paging `json:",inline"`
	Items  []Task `json:"items"`
}

type LendingAction string

const (
	LendingBorrowed LendingAction = "BORROWED"
	LendingReturned LendingAction = "RETURNED"
)

// LendingEvent is published to the lending topic after a successful
// borrow or return.
type LendingEvent struct {
	BookID  int64         `json:"bookId"`
	Action  LendingAction `json:"action"`
	At      Instant       `json:"at"`
	Version int           `json:"version"`
}
