package game

import "log/slog"

// logStartup logs the effective pipeline configuration once.
func (g *Game) logStartup() {
	ac := g.cfg.Attention
	slog.Info("attention pipeline ready",
		"run_id", g.runID,
		"seed", g.seed,
		"objects", g.population.Len(),
		"weight_mode", ac.WeightMode,
		"visibility", ac.Visibility,
		"proximity", ac.Proximity,
		"angular_cue", ac.AngularCue,
		"range", ac.Range,
		"npc_eye", g.eye != nil,
		"output_dir", g.outputManager.Dir(),
	)
}
