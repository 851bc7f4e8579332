package services

import (
	"regexp"
	"strings"

	"larre/model"
)

// DeviceHints carries what the caller revealed about itself.
type DeviceHints struct {
	UserAgent string
	Platform  string // Sec-CH-UA-Platform, may be empty
}

// DeviceDetector classifies the sending device. The heuristic behind it is
// replaceable without touching callers.
type DeviceDetector interface {
	Detect(hints DeviceHints) model.Device
}

var (
	phonePattern  = regexp.MustCompile(`(?i)Mobi|Android`)
	tabletPattern = regexp.MustCompile(`(?i)Tablet|iPad`)
)

// UserAgentDetector sniffs the user agent string. Coarse and best-effort.
type UserAgentDetector struct{}

func (UserAgentDetector) Detect(hints DeviceHints) model.Device {
	deviceType := detectDeviceType(hints.UserAgent)

	platform := strings.Trim(hints.Platform, `" `)
	if platform == "" {
		platform = platformFromUserAgent(hints.UserAgent)
	}

	return model.Device{Name: deviceName(platform, deviceType), Type: deviceType}
}

func detectDeviceType(ua string) model.DeviceType {
	if phonePattern.MatchString(ua) {
		return model.DevicePhone
	}
	if tabletPattern.MatchString(ua) {
		return model.DeviceTablet
	}
	return model.DeviceLaptop
}

func deviceName(platform string, deviceType model.DeviceType) string {
	switch {
	case strings.Contains(platform, "Mac"):
		return "Mac"
	case strings.Contains(platform, "Win"):
		return "Windows PC"
	case deviceType == model.DevicePhone:
		return "Phone"
	}
	return "Device"
}

// platformFromUserAgent approximates navigator.platform. iOS agents mention
// "Mac OS X" so they are checked first.
func platformFromUserAgent(ua string) string {
	switch {
	case strings.Contains(ua, "iPhone"):
		return "iPhone"
	case strings.Contains(ua, "iPad"):
		return "iPad"
	case strings.Contains(ua, "Android"):
		return "Linux armv8l"
	case strings.Contains(ua, "Macintosh"):
		return "MacIntel"
	case strings.Contains(ua, "Windows"):
		return "Win32"
	case strings.Contains(ua, "Linux"):
		return "Linux x86_64"
	}
	return "Unknown"
}
