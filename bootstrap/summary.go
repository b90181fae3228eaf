package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/composekit/component"
	"github.com/kbukum/composekit/di"
	"github.com/kbukum/composekit/logger"
	"github.com/kbukum/composekit/modularity"
	"github.com/kbukum/composekit/observability"
	"github.com/kbukum/composekit/version"
)

// ModuleSummary is one catalog module and its state.
type ModuleSummary struct {
	Name  string
	Mode  string
	State string
}

// RegionSummary is one region and its view counts.
type RegionSummary struct {
	Name   string
	Views  int
	Active int
}

// Summary is a snapshot of a bootstrap run for the startup display.
type Summary struct {
	Name          string
	Version       version.Info
	RunID         string
	Duration      time.Duration
	Completed     bool
	Steps         []StepRecord
	Registrations []di.Registration
	Modules       []ModuleSummary
	Regions       []RegionSummary
	Health        *observability.ServiceHealth
}

// Summary collects the current state of the bootstrapper.
func (b *Bootstrapper) Summary(ctx context.Context) *Summary {
	s := &Summary{
		Name:      "composekit",
		Version:   version.Get(),
		RunID:     b.runID,
		Completed: b.State.Completed(),
		Steps:     b.State.Records(),
	}
	if !b.started.IsZero() {
		s.Duration = time.Since(b.started)
	}
	if b.cfg != nil && b.cfg.Name != "" {
		s.Name = b.cfg.Name
	}
	if b.cfg != nil && b.cfg.Version != "" {
		s.Version.Version = b.cfg.Version
	}

	if b.Catalog != nil {
		for _, m := range b.Catalog.Modules() {
			s.Modules = append(s.Modules, ModuleSummary{
				Name:  m.Name,
				Mode:  m.Mode.String(),
				State: m.State.String(),
			})
		}
	}
	if b.RegionManager != nil {
		for _, r := range b.RegionManager.Regions() {
			s.Regions = append(s.Regions, RegionSummary{
				Name:   r.Name(),
				Views:  len(r.Views()),
				Active: len(r.ActiveViews()),
			})
		}
	}

	var registry *component.Registry
	if b.Container != nil {
		s.Registrations = b.Container.Registrations()
		registry, _ = di.TryResolve[*component.Registry](b.Container)
	}
	s.Health = observability.CollectHealth(ctx, s.Name, s.Version.Short(), registry)
	return s
}

// Print writes the summary as a tree.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "🚀 %s %s started in %.2fs (run %s)\n\n",
		s.Name, s.Version.Short(), s.Duration.Seconds(), s.RunID)

	fmt.Fprintf(w, "🧭 Steps (%d)\n", len(s.Steps))
	for i, st := range s.Steps {
		icon := "✅"
		if st.Err != nil {
			icon = "❌"
		}
		fmt.Fprintf(w, "   %s %s %s (%s)\n", branch(i, len(s.Steps)), icon, st.Name, st.Duration.Round(time.Microsecond))
	}

	singletons, transients := 0, 0
	for _, r := range s.Registrations {
		if r.Lifetime == di.Singleton {
			singletons++
		} else {
			transients++
		}
	}
	fmt.Fprintf(w, "\n📦 Registrations (%d singleton, %d transient)\n", singletons, transients)

	if len(s.Modules) > 0 {
		fmt.Fprintf(w, "\n🧩 Modules\n")
		for i, m := range s.Modules {
			fmt.Fprintf(w, "   %s %s %s [%s]\n", branch(i, len(s.Modules)), moduleIcon(m.State), m.Name, m.Mode)
		}
	}

	if len(s.Regions) > 0 {
		fmt.Fprintf(w, "\n🪟 Regions\n")
		for i, r := range s.Regions {
			fmt.Fprintf(w, "   %s %s (%d views, %d active)\n", branch(i, len(s.Regions)), r.Name, r.Views, r.Active)
		}
	}

	if s.Health != nil && len(s.Health.Components) > 0 {
		fmt.Fprintf(w, "\n🏥 Health Check\n")
		for i, h := range s.Health.Components {
			msg := ""
			if h.Message != "" {
				msg = fmt.Sprintf(" — %s", h.Message)
			}
			fmt.Fprintf(w, "   %s %s %s: %s%s\n", branch(i, len(s.Health.Components)),
				healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
		}
	}

	fmt.Fprintf(w, "\n")
}

// Log writes the summary as one structured log line.
func (s *Summary) Log() {
	fields := s.Version.Fields()
	fields[logger.FieldRunID] = s.RunID
	fields[logger.FieldDuration] = s.Duration.String()
	fields["steps"] = len(s.Steps)
	fields["registrations"] = len(s.Registrations)
	fields["modules"] = len(s.Modules)
	fields["regions"] = len(s.Regions)
	if s.Health != nil {
		fields[logger.FieldStatus] = string(s.Health.Status)
	}
	logger.Info("Bootstrap summary", fields)
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func moduleIcon(state string) string {
	switch state {
	case modularity.StateInitialized.String():
		return "✅"
	case modularity.StateFailed.String():
		return "❌"
	case modularity.StateInitializing.String():
		return "⏳"
	default:
		return "⏸️"
	}
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
