package model

import "strings"

type TagColor struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Bg    string `json:"bg"`
}

// TagColors is the fixed palette tags may use.
var TagColors = []TagColor{
	{Name: "Red", Value: "#ef4444", Bg: "#fef2f2"},
	{Name: "Orange", Value: "#f97316", Bg: "#fff7ed"},
	{Name: "Amber", Value: "#f59e0b", Bg: "#fffbeb"},
	{Name: "Green", Value: "#10b981", Bg: "#ecfdf5"},
	{Name: "Teal", Value: "#14b8a6", Bg: "#f0fdfa"},
	{Name: "Blue", Value: "#3b82f6", Bg: "#eff6ff"},
	{Name: "Indigo", Value: "#6366f1", Bg: "#eef2ff"},
	{Name: "Purple", Value: "#8b5cf6", Bg: "#f5f3ff"},
	{Name: "Pink", Value: "#ec4899", Bg: "#fdf2f8"},
	{Name: "Slate", Value: "#64748b", Bg: "#f8fafc"},
}

func IsTagColor(value string) bool {
	for _, c := range TagColors {
		if strings.EqualFold(c.Value, value) {
			return true
		}
	}
	return false
}
