package models

import (
	"time"
)

// Survey mirrors one element of the vendor's survey listing.
type Survey struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	OwnerID      string `json:"ownerId"`
	LastModified string `json:"lastModified,omitempty"`
	CreationDate string `json:"creationDate,omitempty"`
	IsActive     bool   `json:"isActive"`
}

// SurveyList is the vendor envelope returned by GET surveys.
type SurveyList struct {
	Result struct {
		Elements []Survey `json:"elements"`
		NextPage string   `json:"nextPage,omitempty"`
	} `json:"result"`
}

// Surveys returns the listed elements, never nil.
func (l SurveyList) Surveys() []Survey {
	if l.Result.Elements == nil {
		return []Survey{}
	}
	return l.Result.Elements
}

// ExportState values; see internal/exports for the transition rules.
type ExportState string

const (
	ExportRequested  ExportState = "requested"
	ExportInProgress ExportState = "inProgress"
	ExportComplete   ExportState = "complete"
	ExportFailed     ExportState = "failed"
)

// ExportJob tracks a vendor export by the vendor's progress id.
type ExportJob struct {
	ProgressID      string      `gorm:"primaryKey" json:"progressId"`
	SurveyID        string      `gorm:"index;not null" json:"surveyId"`
	Format          string      `json:"format"`
	State           ExportState `gorm:"index" json:"state"`
	PercentComplete float64     `json:"percentComplete"`
	FileID          string      `json:"fileId,omitempty"`
	CreatedAt       time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type MonthlyData struct {
	Month        string `json:"month"`
	Projects     int    `json:"projects"`
	Participants int    `json:"participants"`
}

type ProjectCategory struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// RepositoryStats is the summary shown on the dashboard view.
type RepositoryStats struct {
	TotalProjects     int               `json:"totalProjects"`
	ActiveProjects    int               `json:"activeProjects"`
	TotalParticipants int               `json:"totalParticipants"`
	CompletedSurveys  int               `json:"completedSurveys"`
	MonthlyData       []MonthlyData     `json:"monthlyData"`
	ProjectCategories []ProjectCategory `json:"projectCategories"`
}

// ErrorEnvelope is the body of every failed gateway response.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
