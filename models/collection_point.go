package models

// LatLng is a WGS84 coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// SaoPauloCenter is where a session is assumed to be until the client reports a location.
var SaoPauloCenter = LatLng{Lat: -23.5505, Lng: -46.6333}

// CollectionPoint is a place that accepts recyclables (cooperative, ecopoint, ...).
type CollectionPoint struct {
	ID                string   `gorm:"primaryKey" json:"id"`
	Slug              string   `gorm:"uniqueIndex;not null" json:"slug"`
	Name              string   `gorm:"not null" json:"name"`
	Type              string   `gorm:"type:varchar(32);index" json:"type"` // cooperative | electronics | ecopoint | pharmacy
	Address           string   `json:"address"`
	Lat               float64  `json:"lat"`
	Lng               float64  `json:"lng"`
	AcceptedMaterials []string `gorm:"serializer:json" json:"accepted_materials"`
	SpecialMaterials  []string `gorm:"serializer:json" json:"special_materials"`
	Hours             string   `json:"hours"`
	Phone             string   `json:"phone"`
	Contact           string   `json:"contact"`
	Description       string   `gorm:"type:text" json:"description"`
	Rating            float64  `json:"rating"`
	Icon              string   `gorm:"size:16" json:"icon"`
	Verified          bool     `json:"verified"`

	Timestamps
}

func (p CollectionPoint) Location() LatLng { return LatLng{Lat: p.Lat, Lng: p.Lng} }

// PointDistance is a collection point with its distance from an origin, in km.
type PointDistance struct {
	CollectionPoint
	DistanceKm float64 `json:"distance_km"`
}

var CollectionPointSeed = []CollectionPoint{
	{
		Name:              "Cooperativa Vila Mariana",
		Type:              "cooperative",
		Address:           "Rua Domingos de Morais, 2187 - Vila Mariana, São Paulo - SP",
		Lat:               -23.5881,
		Lng:               -46.6383,
		AcceptedMaterials: []string{"plastic", "glass", "metal", "paper"},
		SpecialMaterials:  []string{},
		Hours:             "Seg-Sex: 8h-17h, Sáb: 8h-12h",
		Phone:             "(11) 5571-1234",
		Contact:           "João Silva",
		Description:       "Cooperativa familiar com 8 trabalhadores. Aceita todos os materiais recicláveis básicos.",
		Rating:            4.7,
		Icon:              "🦭",
		Verified:          true,
	},
	{
		Name:              "Ponto de Coleta Eletrônicos - Shopping Center",
		Type:              "electronics",
		Address:           "Av. Paulista, 1230 - Bela Vista, São Paulo - SP",
		Lat:               -23.5629,
		Lng:               -46.6544,
		AcceptedMaterials: []string{},
		SpecialMaterials:  []string{"electronics", "batteries", "small_appliances"},
		Hours:             "Diariamente: 10h-22h",
		Phone:             "(11) 3251-5678",
		Contact:           "Central de Atendimento",
		Description:       "Ponto de coleta especializado em eletrônicos, pilhas, baterias e pequenos eletrodomésticos.",
		Rating:            4.9,
		Icon:              "⚡",
		Verified:          true,
	},
	{
		Name:              "EcoPonto Jardins",
		Type:              "ecopoint",
		Address:           "Rua Augusta, 2690 - Cerqueira César, São Paulo - SP",
		Lat:               -23.5619,
		Lng:               -46.6608,
		AcceptedMaterials: []string{"plastic", "glass", "metal", "paper", "organic"},
		SpecialMaterials:  []string{"electronics", "batteries", "oil", "lamps"},
		Hours:             "24 horas (self-service)",
		Phone:             "(11) 3061-9000",
		Contact:           "Prefeitura de São Paulo",
		Description:       "Ecoponto municipal com containers para múltiplos materiais. Disponível 24h.",
		Rating:            4.5,
		Icon:              "♻️",
		Verified:          true,
	},
	{
		Name:              "Cooperleste - Zona Leste",
		Type:              "cooperative",
		Address:           "Av. Aricanduva, 5555 - Vila Matilde, São Paulo - SP",
		Lat:               -23.5523,
		Lng:               -46.5271,
		AcceptedMaterials: []string{"plastic", "glass", "metal", "paper", "cardboard"},
		SpecialMaterials:  []string{},
		Hours:             "Seg-Sex: 7h-16h",
		Phone:             "(11) 2742-3456",
		Contact:           "Maria Santos",
		Description:       "Cooperativa atende Zona Leste de SP. 15 famílias dependem dessa coleta.",
		Rating:            4.6,
		Icon:              "🦭",
		Verified:          true,
	},
	{
		Name:              "Farmácia Verde - Descarte de Medicamentos",
		Type:              "pharmacy",
		Address:           "Rua da Consolação, 3000 - Consolação, São Paulo - SP",
		Lat:               -23.5489,
		Lng:               -46.6607,
		AcceptedMaterials: []string{},
		SpecialMaterials:  []string{"medicines", "syringes", "medical_waste"},
		Hours:             "Seg-Sáb: 8h-22h, Dom: 9h-18h",
		Phone:             "(11) 3256-7890",
		Contact:           "Atendimento",
		Description:       "Descarte seguro de medicamentos vencidos, seringas e resíduos médicos domésticos.",
		Rating:            4.8,
		Icon:              "💊",
		Verified:          true,
	},
}
