package seeder

import (
	"context"
	"errors"
	"log"
	"time"

	"hrms-backend/models"
	"hrms-backend/repository"
)

var defaultDepartments = []models.Department{
	{Name: "Human Resources", Description: "People operations and recruitment"},
	{Name: "Finance", Description: "Accounting and payroll"},
	{Name: "Engineering", Description: "Product development"},
	{Name: "Marketing", Description: "Brand and growth"},
	{Name: "Sales", Description: "Customer acquisition"},
	{Name: "Operations", Description: "Facilities and logistics"},
	{Name: "Customer Support", Description: "Customer service"},
}

// SeedDepartments inserts the default departments that do not exist yet.
func SeedDepartments(ctx context.Context, departmentRepo repository.DepartmentRepository) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	created := 0
	for _, d := range defaultDepartments {
		_, err := departmentRepo.FindDepartmentByName(ctx, d.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		dept := d
		if err := departmentRepo.CreateDepartment(ctx, &dept); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
		created++
	}

	log.Printf("Department seeding done: %d created", created)
	return nil
}
