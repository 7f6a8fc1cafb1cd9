package constants

// Static route constants
const (
	PublicRoute    = "/"
	LoginRoute     = "/login"
	ToolsRoute     = "/tools"
	UpgradeRoute   = "/upgrade"
	DashboardRoute = "/user/dashboard"
	SettingsRoute  = "/user/settings"
)
