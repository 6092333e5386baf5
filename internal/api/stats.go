package api

import (
	"encoding/json"
	"net/http"

	"github.com/arencloud/surveyboard/internal/models"
)

// repoStats is placeholder summary data; nothing computes it.
var repoStats = models.RepositoryStats{
	TotalProjects:     12,
	ActiveProjects:    8,
	TotalParticipants: 245,
	CompletedSurveys:  156,
	MonthlyData: []models.MonthlyData{
		{Month: "Jan", Projects: 2, Participants: 15},
		{Month: "Feb", Projects: 3, Participants: 22},
		{Month: "Mar", Projects: 1, Participants: 18},
		{Month: "Apr", Projects: 4, Participants: 35},
		{Month: "May", Projects: 2, Participants: 28},
		{Month: "Jun", Projects: 0, Participants: 12},
	},
	ProjectCategories: []models.ProjectCategory{
		{Category: "User Experience", Count: 5},
		{Category: "Market Research", Count: 3},
		{Category: "Customer Satisfaction", Count: 2},
		{Category: "Product Testing", Count: 2},
	},
}

var repoStatsBody = mustMarshal(repoStats)

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func repositoryStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(repoStatsBody)
}
