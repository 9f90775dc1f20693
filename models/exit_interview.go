package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ExitInterviewScheduled = "scheduled"
	ExitInterviewCompleted = "completed"
	ExitInterviewCancelled = "cancelled"
)

type ExitInterview struct {
	ID             primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	EmployeeID     primitive.ObjectID  `json:"employee_id" bson:"employee_id"`
	InterviewDate  string              `json:"interview_date" bson:"interview_date"`
	LastWorkingDay string              `json:"last_working_day" bson:"last_working_day"`
	Reason         string              `json:"reason" bson:"reason"`
	Feedback       string              `json:"feedback,omitempty" bson:"feedback,omitempty"`
	Rating         int                 `json:"rating,omitempty" bson:"rating,omitempty"`
	WouldRecommend *bool               `json:"would_recommend,omitempty" bson:"would_recommend,omitempty"`
	Status         string              `json:"status" bson:"status"`
	ConductedBy    *primitive.ObjectID `json:"conducted_by,omitempty" bson:"conducted_by,omitempty"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
}

type ExitInterviewCreatePayload struct {
	EmployeeID     string `json:"employee_id" validate:"required,objectid"`
	InterviewDate  string `json:"interview_date" validate:"required,yyyymmdd"`
	LastWorkingDay string `json:"last_working_day" validate:"required,yyyymmdd"`
	Reason         string `json:"reason" validate:"required,oneof=better-opportunity compensation relocation personal career-change management other"`
}

type ExitInterviewUpdatePayload struct {
	InterviewDate  string `json:"interview_date,omitempty" validate:"omitempty,yyyymmdd"`
	LastWorkingDay string `json:"last_working_day,omitempty" validate:"omitempty,yyyymmdd"`
	Reason         string `json:"reason,omitempty" validate:"omitempty,oneof=better-opportunity compensation relocation personal career-change management other"`
	Status         string `json:"status,omitempty" validate:"omitempty,oneof=scheduled cancelled"`
}

type ExitInterviewCompletePayload struct {
	Feedback       string `json:"feedback" validate:"required,min=5,max=2000"`
	Rating         int    `json:"rating" validate:"required,min=1,max=5"`
	WouldRecommend *bool  `json:"would_recommend"`
}
