package renewal

// ReportStatus renders the renewal and deployment status line for a
// certificate. The wording is a total decision table over the two flags:
// autorenew picks the branch first, autodeploy refines it. The renewal
// configs directory is part of every message so operators know where to
// change the settings.
func ReportStatus(cfg *Config) string {
	var msg string
	if cfg.AutoRenew {
		if cfg.AutoDeploy {
			msg = "Automatic renewal and deployment has been enabled for your certificate."
		} else {
			msg = "Automatic renewal but not automatic deployment has been enabled for your certificate."
		}
	} else {
		if cfg.AutoDeploy {
			msg = "Automatic deployment but not automatic renewal has been enabled for your certificate."
		} else {
			msg = "Automatic renewal and deployment has not been enabled for your certificate."
		}
	}
	return msg + " These settings can be configured in the directories under " + cfg.RenewalConfigsDir + "."
}
