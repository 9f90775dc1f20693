package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EmployeeStatusActive     = "active"
	EmployeeStatusOnLeave    = "on-leave"
	EmployeeStatusResigned   = "resigned"
	EmployeeStatusTerminated = "terminated"
)

type EmergencyContact struct {
	Name         string `json:"name" bson:"name,omitempty"`
	Relationship string `json:"relationship" bson:"relationship,omitempty"`
	Phone        string `json:"phone" bson:"phone,omitempty"`
}

type Employee struct {
	ID               primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	EmployeeCode     string              `json:"employee_code" bson:"employee_code"`
	FirstName        string              `json:"first_name" bson:"first_name"`
	LastName         string              `json:"last_name" bson:"last_name"`
	Email            string              `json:"email" bson:"email"`
	Phone            string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Position         string              `json:"position" bson:"position"`
	DepartmentID     *primitive.ObjectID `json:"department_id,omitempty" bson:"department_id,omitempty"`
	Salary           float64             `json:"salary" bson:"salary"`
	DateOfJoining    string              `json:"date_of_joining" bson:"date_of_joining"`
	Status           string              `json:"status" bson:"status"`
	Address          string              `json:"address,omitempty" bson:"address,omitempty"`
	DateOfBirth      string              `json:"date_of_birth,omitempty" bson:"date_of_birth,omitempty"`
	Gender           string              `json:"gender,omitempty" bson:"gender,omitempty"`
	EmergencyContact *EmergencyContact   `json:"emergency_contact,omitempty" bson:"emergency_contact,omitempty"`
	CreatedAt        time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" bson:"updated_at"`
}

func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

type EmployeeCreatePayload struct {
	EmployeeCode     string            `json:"employee_code" validate:"omitempty,max=20"`
	FirstName        string            `json:"first_name" validate:"required,min=1,max=60"`
	LastName         string            `json:"last_name" validate:"max=60"`
	Email            string            `json:"email" validate:"required,email"`
	Phone            string            `json:"phone" validate:"omitempty,max=30"`
	Position         string            `json:"position" validate:"required,max=100"`
	DepartmentID     string            `json:"department_id" validate:"omitempty,objectid"`
	Salary           float64           `json:"salary" validate:"min=0"`
	DateOfJoining    string            `json:"date_of_joining" validate:"required,yyyymmdd"`
	Status           string            `json:"status" validate:"omitempty,oneof=active on-leave resigned terminated"`
	Address          string            `json:"address" validate:"omitempty,max=255"`
	DateOfBirth      string            `json:"date_of_birth" validate:"omitempty,yyyymmdd"`
	Gender           string            `json:"gender" validate:"omitempty,oneof=male female other"`
	EmergencyContact *EmergencyContact `json:"emergency_contact"`
}

type EmployeeUpdatePayload struct {
	FirstName        string            `json:"first_name,omitempty" validate:"omitempty,max=60"`
	LastName         string            `json:"last_name,omitempty" validate:"omitempty,max=60"`
	Email            string            `json:"email,omitempty" validate:"omitempty,email"`
	Phone            string            `json:"phone,omitempty" validate:"omitempty,max=30"`
	Position         string            `json:"position,omitempty" validate:"omitempty,max=100"`
	DepartmentID     string            `json:"department_id,omitempty" validate:"omitempty,objectid"`
	Salary           *float64          `json:"salary,omitempty" validate:"omitempty,min=0"`
	DateOfJoining    string            `json:"date_of_joining,omitempty" validate:"omitempty,yyyymmdd"`
	Status           string            `json:"status,omitempty" validate:"omitempty,oneof=active on-leave resigned terminated"`
	Address          string            `json:"address,omitempty" validate:"omitempty,max=255"`
	DateOfBirth      string            `json:"date_of_birth,omitempty" validate:"omitempty,yyyymmdd"`
	Gender           string            `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
}

// EmployeeFilter narrows employee listings.
type EmployeeFilter struct {
	DepartmentID *primitive.ObjectID
	Status       string
	Search       string
	Page         int64
	Limit        int64
}
