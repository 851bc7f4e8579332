package dto

import "larre/model"

type UpdateSettingsRequest struct {
	Dark             *bool `json:"isDark"`
	SidebarCollapsed *bool `json:"sidebarCollapsed"`
}

type SettingsResponse struct {
	model.Preferences
	RootClasses []string `json:"rootClasses"`
}
