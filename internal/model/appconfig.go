package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default optimizer settings applied to new projects
	DefaultAngleTolerance float64 `json:"default_angle_tolerance"`
	DefaultMaxChainSize   int     `json:"default_max_chain_size"`
	DefaultCuttingLoss    float64 `json:"default_cutting_loss"`
	DefaultFrontEndLoss   float64 `json:"default_front_end_loss"`
	DefaultBackEndLoss    float64 `json:"default_back_end_loss"`

	// Application preferences
	AutoSaveInterval int      `json:"auto_save_interval"` // minutes, 0 = disabled
	RecentProjects   []string `json:"recent_projects"`
	HistoryLimit     int      `json:"history_limit"` // run-history rows kept, 0 = unlimited
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultAngleTolerance: defaults.AngleTolerance,
		DefaultMaxChainSize:   defaults.MaxChainSize,
		DefaultCuttingLoss:    defaults.Constraints.CuttingLoss,
		DefaultFrontEndLoss:   defaults.Constraints.FrontEndLoss,
		DefaultBackEndLoss:    defaults.Constraints.BackEndLoss,
		AutoSaveInterval:      0,
		RecentProjects:        []string{},
		HistoryLimit:          200,
	}
}

// ApplyToSettings copies the default values from AppConfig into a Settings
// struct. This is used when creating a new project so it inherits the
// user's saved defaults.
func (c AppConfig) ApplyToSettings(s *Settings) {
	s.AngleTolerance = c.DefaultAngleTolerance
	s.MaxChainSize = c.DefaultMaxChainSize
	s.Constraints.CuttingLoss = c.DefaultCuttingLoss
	s.Constraints.FrontEndLoss = c.DefaultFrontEndLoss
	s.Constraints.BackEndLoss = c.DefaultBackEndLoss
}

// AddRecentProject prepends a path to the recent projects list, dropping
// duplicates and keeping at most max entries.
func (c *AppConfig) AddRecentProject(path string, max int) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > max {
		recent = recent[:max]
	}
	c.RecentProjects = recent
}
