// Package models contains the persisted row models for the application,
// configured to work using GORM as the ORM.
package models

// TableName is the single table holding the employee ledger.
const TableName = "employees"

// Employee represents one row of the employees table.
// The ID is assigned by the caller, not by sqlite.
type Employee struct {
	ID             int64   `gorm:"column:id;primaryKey;autoIncrement:false"`
	EmployeeNumber *int64  `gorm:"column:employee_number"`
	Name           string  `gorm:"column:name"`
	Status         string  `gorm:"column:status"`
	Anniversary    string  `gorm:"column:anniversary"`
	DaysTaken      int64   `gorm:"column:days_taken"`
	DaysAvailable  int64   `gorm:"column:days_available"`
	DocumentPath   *string `gorm:"column:document_path"`
}

// TableName overrides the gorm naming strategy.
func (Employee) TableName() string {
	return TableName
}

// ExpectedColumns lists every column of the current schema in table order.
var ExpectedColumns = []string{
	"id",
	"name",
	"employee_number",
	"status",
	"anniversary",
	"days_taken",
	"days_available",
	"document_path",
}
