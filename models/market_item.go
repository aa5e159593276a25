package models

// MarketItem is something Ecoins can be exchanged for in the rewards market.
type MarketItem struct {
	ID     string `gorm:"primaryKey" json:"id"`
	Code   string `gorm:"uniqueIndex;not null" json:"code"` // slug of the title
	Title  string `gorm:"not null" json:"title"`
	Cost   int    `gorm:"not null" json:"cost"`
	Icon   string `gorm:"size:16" json:"icon"`
	Active bool   `gorm:"default:true" json:"active"`

	Timestamps
}

// MarketSeed is the catalog the market starts with.
var MarketSeed = []MarketItem{
	{Title: "Cupom iFood R$10", Cost: 200, Icon: "🍔"},
	{Title: "Kit Canudos Inox", Cost: 500, Icon: "🥤"},
	{Title: "Doação para ONG", Cost: 100, Icon: "❤️"},
}
