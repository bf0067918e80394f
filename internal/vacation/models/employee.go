// Package models defines the core domain model for the Employee entity.
// It includes definitions for Employee, the Status enumeration, the editable
// fields and list orderings.
package models

import (
	"fmt"

	"github.com/gartstein/vacation/internal/vacation/attachments"
)

// Status is the employment classification of an employee.
type Status string

const (
	// Company staff must hold a unique employee number.
	Company Status = "Company"
	// Temp staff never hold an employee number.
	Temp Status = "Temp"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == Company || s == Temp
}

// Field names a single editable column.
type Field string

const (
	FieldName           Field = "name"
	FieldEmployeeNumber Field = "employee_number"
	FieldStatus         Field = "status"
	FieldAnniversary    Field = "anniversary"
	FieldDaysTaken      Field = "days_taken"
	FieldDocument       Field = "document"
)

// ListOrder selects how employees are sorted.
type ListOrder string

const (
	OrderByID       ListOrder = "id"
	OrderByLastName ListOrder = "last_name"
)

// Employee defines the domain model for an employee and their vacation ledger.
type Employee struct {
	// ID is the stable identity, assigned as max(id)+1.
	ID int64
	// EmployeeNumber is nil when absent; always nil for Temp staff.
	EmployeeNumber *int
	// Name is the employee's full name.
	Name string
	// Status is Company or Temp.
	Status Status
	// Anniversary is the service start date in YYYY/MM/DD form.
	Anniversary string
	// DaysTaken is the number of vacation days used.
	DaysTaken int
	// DaysAvailable is entitlement minus DaysTaken as of the last reconcile.
	DaysAvailable int
	// Attachments are the attached documents in insertion order.
	Attachments []attachments.Attachment
}

// CurrentDocument returns the name of the most recently attached document.
func (emp Employee) CurrentDocument() string {
	return attachments.Current(emp.Attachments)
}

// DisplayName renders the "<id>. <name>" label.
func (emp Employee) DisplayName() string {
	return fmt.Sprintf("%d. %s", emp.ID, emp.Name)
}

// MissingNumber reports a Company record that holds no employee number,
// as left behind when a Temp record is moved to Company.
func (emp Employee) MissingNumber() bool {
	return emp.Status == Company && emp.EmployeeNumber == nil
}

// NumberString renders the employee number, or "" when absent.
func (emp Employee) NumberString() string {
	if emp.EmployeeNumber == nil {
		return ""
	}
	return fmt.Sprintf("%d", *emp.EmployeeNumber)
}
