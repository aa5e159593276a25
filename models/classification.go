package models

type EnvironmentalImpact struct {
	CO2SavedKg    string  `json:"co2_saved_kg"`
	EnergySaved   string  `json:"energy_saved"`
	RecyclingTime string  `json:"recycling_time"`
	WaterSaved    *string `json:"water_saved"`
}

// ClassificationResult is what the AI service tells us about one photographed item.
// Consumed once by the reward ledger.
type ClassificationResult struct {
	Material               string              `json:"material" validate:"required"`
	MaterialDetails        string              `json:"material_details"`
	Category               string              `json:"category"`
	BinColor               string              `json:"bin_color"`
	BinEmoji               string              `json:"bin_emoji"`
	Recyclable             bool                `json:"recyclable"`
	ContaminationDetected  bool                `json:"contamination_detected"`
	ContaminationDetails   *string             `json:"contamination_details"`
	CleaningRequired       bool                `json:"cleaning_required"`
	CleaningInstructions   *string             `json:"cleaning_instructions"`
	EducationalExplanation string              `json:"educational_explanation"`
	ScientificFact         string              `json:"scientific_fact"`
	EnvironmentalImpact    EnvironmentalImpact `json:"environmental_impact"`
	JourneyStory           string              `json:"journey_story"`
	CooperativeImpact      string              `json:"cooperative_impact"`
	EcoinsEarned           int                 `json:"ecoins_earned" validate:"gte=0"`
	Tips                   []string            `json:"tips"`
	ConfidenceScore        int                 `json:"confidence_score" validate:"gte=0,lte=100"`
}
