package model

type Preferences struct {
	Dark             bool `json:"isDark"`
	SidebarCollapsed bool `json:"sidebarCollapsed"`
}
