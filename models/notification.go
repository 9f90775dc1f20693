package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationLeave         = "leave"
	NotificationPayroll       = "payroll"
	NotificationAttendance    = "attendance"
	NotificationExitInterview = "exit-interview"
	NotificationSystem        = "system"
)

type Notification struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Title     string             `json:"title" bson:"title"`
	Message   string             `json:"message" bson:"message"`
	Type      string             `json:"type" bson:"type"`
	Read      bool               `json:"read" bson:"read"`
	Link      string             `json:"link,omitempty" bson:"link,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

type NotificationCreatePayload struct {
	UserID  string `json:"user_id" validate:"required,objectid"`
	Title   string `json:"title" validate:"required,max=150"`
	Message string `json:"message" validate:"required,max=1000"`
	Link    string `json:"link" validate:"omitempty,max=255"`
}
