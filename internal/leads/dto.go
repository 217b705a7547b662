package leads

import (
	"time"

	"github.com/google/uuid"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
)

// LeadDTO is a lead as staff see it in the back office.
type LeadDTO struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// LeadWithResponsesDTO is a lead together with every extra intake answer.
type LeadWithResponsesDTO struct {
	LeadDTO
	Responses []ResponseDTO `json:"responses"`
}

// ResponseDTO is one extra intake answer.
type ResponseDTO struct {
	QuestionKey string `json:"question_key"`
	Answer      string `json:"answer"`
}

// intakeContact is the required part of an intake submission.
type intakeContact struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"notblank"`
}

func FromModel(m *models.Lead) LeadDTO {
	return LeadDTO{
		ID:          m.ID,
		TenantID:    m.TenantID,
		Name:        m.Name,
		Email:       m.Email,
		Phone:       m.Phone,
		SubmittedAt: m.SubmittedAt,
	}
}

// WithResponses attaches responses, always yielding a non-nil list.
func WithResponses(m *models.Lead, responses []models.IntakeResponse) LeadWithResponsesDTO {
	out := LeadWithResponsesDTO{
		LeadDTO:   FromModel(m),
		Responses: make([]ResponseDTO, 0, len(responses)),
	}
	for _, r := range responses {
		out.Responses = append(out.Responses, ResponseDTO{QuestionKey: r.QuestionKey, Answer: r.Answer})
	}
	return out
}
