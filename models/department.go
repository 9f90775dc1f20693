package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Department struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	ManagerID   *primitive.ObjectID `bson:"manager_id,omitempty" json:"manager_id,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

type DepartmentWithCount struct {
	Department
	EmployeeCount int64 `json:"employee_count"`
}

type DepartmentPayload struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	ManagerID   string `json:"manager_id" validate:"omitempty,objectid"`
}

// DepartmentCount is one row of the headcount aggregation.
type DepartmentCount struct {
	DepartmentID *primitive.ObjectID `bson:"_id" json:"department_id"`
	Count        int64               `bson:"count" json:"count"`
	TotalSalary  float64             `bson:"total_salary" json:"total_salary"`
}
