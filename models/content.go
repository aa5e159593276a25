package models

type LearningTrack struct {
	Title    string `json:"title"`
	Progress int    `json:"progress"`
}

type SocialPost struct {
	User   string `json:"user"`
	Action string `json:"action"`
	Time   string `json:"time"`
	Likes  int    `json:"likes"`
}

var LearningTracks = []LearningTrack{
	{Title: "Plástico 101", Progress: 80},
	{Title: "Metais Infinitos", Progress: 30},
	{Title: "Vidro & Segurança", Progress: 0},
}

var SocialFeed = []SocialPost{
	{User: "Maria Silva", Action: "Reciclou 15 garrafas PET", Time: "2 min atrás", Likes: 12},
	{User: "João Souza", Action: "Completou o Desafio Semanal", Time: "1 hora atrás", Likes: 45},
	{User: "Ana Costa", Action: "Plantou uma árvore", Time: "3 horas atrás", Likes: 89},
}
