package models

// Milestone is an items-identified goal shown on the impact screen.
type Milestone struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Target      int     `json:"target"`
	Current     int     `json:"current"`
	Progress    float64 `json:"progress"` // percent, capped at 100
	Completed   bool    `json:"completed"`
}

// Milestones are the predefined goals; Current/Progress/Completed are filled per user.
var Milestones = []Milestone{
	{ID: 1, Title: "Iniciante Consciente", Description: "Reciclou 5 itens", Target: 5},
	{ID: 2, Title: "Amigo do Ambiente", Description: "Reciclou 20 itens", Target: 20},
	{ID: 3, Title: "Guerreiro da Reciclagem", Description: "Reciclou 50 itens", Target: 50},
}
