package models

// Difficulty of a generated quiz, also used as the user's level.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

type QuizOption struct {
	ID        string `json:"id" validate:"required"`
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// QuizData is the quiz payload produced by the AI service.
type QuizData struct {
	Question             string       `json:"question" validate:"required"`
	ScenarioDescription  string       `json:"scenario_description"`
	ImageSuggestion      string       `json:"image_suggestion"`
	Difficulty           Difficulty   `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Options              []QuizOption `json:"options" validate:"min=2,dive"`
	CorrectAnswerID      string       `json:"correct_answer_id" validate:"required"`
	ExplanationCorrect   string       `json:"explanation_correct"`
	ExplanationIncorrect string       `json:"explanation_incorrect"`
	FunFact              string       `json:"fun_fact"`
	LearningPoint        string       `json:"learning_point"`
	EcoinsReward         int          `json:"ecoins_reward" validate:"gte=0"`
	MaterialCategory     string       `json:"material_category"`
}

type AnswerFeedback struct {
	IsCorrect  bool   `json:"is_correct"`
	SelectedID string `json:"selected_id"`
}
