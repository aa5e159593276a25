package models

import "strings"

// AppView identifies the active screen.
type AppView string

const (
	ViewHome    AppView = "home"
	ViewScan    AppView = "scan"
	ViewMap     AppView = "map"
	ViewImpact  AppView = "impact"
	ViewProfile AppView = "profile"
	ViewMarket  AppView = "market"
	ViewSocial  AppView = "social"
	ViewLearn   AppView = "learn"
)

var AllViews = []AppView{ViewHome, ViewScan, ViewMap, ViewImpact, ViewProfile, ViewMarket, ViewSocial, ViewLearn}

// ParseView maps any input to a known view; unknown input is home.
func ParseView(s string) AppView {
	v := AppView(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllViews {
		if v == known {
			return v
		}
	}
	return ViewHome
}
