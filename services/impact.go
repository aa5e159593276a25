package services

import (
	"math"
	"net/url"
	"sort"

	"focargo/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type MaterialShare struct {
	Key     models.MaterialKey `json:"key"`
	Label   string             `json:"label"`
	Icon    string             `json:"icon"`
	Color   string             `json:"color"`
	Count   int                `json:"count"`
	Percent float64            `json:"percent"`
}

type ImpactSummary struct {
	ItemsIdentified        int                `json:"items_identified"`
	Balance                int                `json:"balance"`
	CO2SavedTotal          float64            `json:"co2_saved_total"`
	CooperativeIncomeTotal float64            `json:"cooperative_income_total"`
	ItemsThisWeek          int                `json:"items_this_week"`
	EcoinsThisWeek         int                `json:"ecoins_this_week"`
	Materials              []MaterialShare    `json:"materials"`
	Milestones             []models.Milestone `json:"milestones"`
	ShareMessage           string             `json:"share_message"`
	ShareURL               string             `json:"share_url"`
}

var breakdownOrder = []MaterialShare{
	{Key: models.MaterialPlastic, Label: "Plástico", Icon: "🔴", Color: "#E74C3C"},
	{Key: models.MaterialGlass, Label: "Vidro", Icon: "🟢", Color: "#5FD45E"},
	{Key: models.MaterialMetal, Label: "Metal", Icon: "🟡", Color: "#F39C12"},
	{Key: models.MaterialPaper, Label: "Papel", Icon: "🔵", Color: "#3498DB"},
}

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// ImpactFor summarizes p for the impact screen. The feed only keeps recent activity,
// so "this week" is the whole feed.
func ImpactFor(p models.UserProgress) ImpactSummary {
	sum := ImpactSummary{
		ItemsIdentified:        p.ItemsIdentified,
		Balance:                p.Balance,
		CO2SavedTotal:          p.CO2SavedTotal,
		CooperativeIncomeTotal: p.CooperativeIncomeTotal,
		ItemsThisWeek:          len(p.History),
	}
	for _, h := range p.History {
		sum.EcoinsThisWeek += h.Reward
	}

	denom := p.ItemsIdentified
	if denom < 1 {
		denom = 1
	}
	for _, m := range breakdownOrder {
		m.Count = p.MaterialCounts[m.Key]
		m.Percent = math.Round(float64(m.Count)/float64(denom)*1000) / 10
		sum.Materials = append(sum.Materials, m)
	}
	sort.SliceStable(sum.Materials, func(i, j int) bool { return sum.Materials[i].Count > sum.Materials[j].Count })

	sum.Milestones = MilestonesFor(p.ItemsIdentified)
	sum.ShareMessage = ShareMessage(p)
	sum.ShareURL = "https://wa.me/?text=" + url.QueryEscape(sum.ShareMessage)
	return sum
}

// MilestonesFor fills the predefined milestones with the user's progress.
func MilestonesFor(itemsIdentified int) []models.Milestone {
	out := make([]models.Milestone, len(models.Milestones))
	for i, m := range models.Milestones {
		m.Current = itemsIdentified
		m.Progress = math.Min(float64(itemsIdentified)/float64(m.Target)*100, 100)
		m.Completed = itemsIdentified >= m.Target
		out[i] = m
	}
	return out
}

// ShareMessage is the pt-BR text users post to share their impact.
func ShareMessage(p models.UserProgress) string {
	return ptBR.Sprintf("🌍 Estou fazendo a diferença com EcoCoins!\n📦 %d itens identificados\n💰 %d ecoins ganhos\n🌱 %.1fkg CO₂ economizados\n❤️ R$%.2f para cooperativas",
		p.ItemsIdentified, p.Balance, p.CO2SavedTotal, p.CooperativeIncomeTotal)
}
