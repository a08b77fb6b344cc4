package model

// AppConfig holds user preferences applied to new plans.
type AppConfig struct {
	DefaultStackCap   int      `json:"default_stack_cap"`
	DefaultContainers []string `json:"default_containers"` // catalog ids preselected for new plans
	ReportDir         string   `json:"report_dir"`         // empty means the working directory

	RecentPlans []string `json:"recent_plans"`
}

// maxRecentPlans bounds the recent plans list.
const maxRecentPlans = 10

// DefaultAppConfig returns an AppConfig populated with defaults
// matching DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultStackCap:   defaults.StackCap,
		DefaultContainers: []string{},
		RecentPlans:       []string{},
	}
}

// ApplyToSettings copies the saved defaults into a LoadSettings.
func (c AppConfig) ApplyToSettings(s *LoadSettings) {
	s.StackCap = c.DefaultStackCap
}

// AddRecentPlan moves path to the front of the recent plans list.
func (c *AppConfig) AddRecentPlan(path string) {
	out := []string{path}
	for _, p := range c.RecentPlans {
		if p != path {
			out = append(out, p)
		}
	}
	if len(out) > maxRecentPlans {
		out = out[:maxRecentPlans]
	}
	c.RecentPlans = out
}
