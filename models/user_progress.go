package models

import (
	"time"

	"gorm.io/gorm"
)

// MaterialKey is a bucket of the material histogram.
type MaterialKey string

const (
	MaterialPlastic MaterialKey = "plastic"
	MaterialMetal   MaterialKey = "metal"
	MaterialGlass   MaterialKey = "glass"
	MaterialPaper   MaterialKey = "paper"
	MaterialOther   MaterialKey = "other"
)

// ActivityItem is one line of the activity feed. Never mutated once created.
type ActivityItem struct {
	ID        string `json:"id"`
	Icon      string `json:"icon"`
	Text      string `json:"text"`
	Reward    int    `json:"reward"`
	Timestamp string `json:"timestamp"`
	ImageURL  string `json:"image_url,omitempty"`
}

type QuizHistoryItem struct {
	Question  string `json:"question"`
	Correct   bool   `json:"correct"`
	Material  string `json:"material"`
	Timestamp string `json:"timestamp"`
}

type QuizStats struct {
	Answered      int      `json:"answered"`
	Correct       int      `json:"correct"`
	Incorrect     int      `json:"incorrect"`
	WeakMaterials []string `json:"weak_materials"`
}

// UserProgress is the session aggregate. Transitions never mutate a value in place:
// they Clone, change the copy and hand the copy back.
type UserProgress struct {
	Balance                int                 `json:"balance"`
	ItemsIdentified        int                 `json:"items_identified"`
	CO2Saved               float64             `json:"co2_saved"`
	CO2SavedTotal          float64             `json:"co2_saved_total"`
	CooperativeIncomeTotal float64             `json:"cooperative_income_total"`
	MaterialCounts         map[MaterialKey]int `json:"material_counts"`
	History                []ActivityItem      `json:"history"`
	QuizHistory            []QuizHistoryItem   `json:"quiz_history"`
	QuizStats              QuizStats           `json:"quiz_stats"`
}

// Clone returns a deep copy.
func (p UserProgress) Clone() UserProgress {
	out := p
	out.MaterialCounts = make(map[MaterialKey]int, len(p.MaterialCounts))
	for k, v := range p.MaterialCounts {
		out.MaterialCounts[k] = v
	}
	out.History = append([]ActivityItem(nil), p.History...)
	out.QuizHistory = append([]QuizHistoryItem(nil), p.QuizHistory...)
	out.QuizStats.WeakMaterials = append([]string(nil), p.QuizStats.WeakMaterials...)
	return out
}

// NewUserProgress returns the state every new session starts from.
func NewUserProgress() UserProgress {
	return UserProgress{
		Balance:                150,
		ItemsIdentified:        12,
		CO2Saved:               3.5,
		CO2SavedTotal:          3.5,
		CooperativeIncomeTotal: 15.50,
		MaterialCounts: map[MaterialKey]int{
			MaterialPlastic: 5,
			MaterialMetal:   3,
			MaterialGlass:   2,
			MaterialPaper:   2,
		},
		History: []ActivityItem{
			{ID: "1", Icon: "🔴", Text: "Garrafa PET identificada", Reward: 10, Timestamp: "2 min atrás"},
			{ID: "2", Icon: "📦", Text: "Caixa de Papelão", Reward: 15, Timestamp: "2 horas atrás"},
			{ID: "3", Icon: "🥤", Text: "Lata de Alumínio", Reward: 20, Timestamp: "Ontem"},
		},
		QuizHistory: []QuizHistoryItem{},
		QuizStats:   QuizStats{WeakMaterials: []string{}},
	}
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
