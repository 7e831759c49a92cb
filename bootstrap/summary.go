package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kbukum/voicegate/component"
)

// ClientInfo is an outbound dependency shown in the summary.
type ClientInfo struct {
	Name   string
	Target string
	Type   string
	Status string
}

// Summary renders the startup banner.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	clients         []ClientInfo
	out             io.Writer
}

// NewSummary returns a summary printing to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stdout}
}

// SetStartupDuration records how long startup took.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackClient records an outbound client such as the ElevenLabs or Ollama
// endpoint.
func (s *Summary) TrackClient(name, target, clientType, status string) {
	s.clients = append(s.clients, ClientInfo{Name: name, Target: target, Type: clientType, Status: status})
}

// Display prints infrastructure, routes, clients and live health.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	w := s.out
	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	if registry == nil {
		fmt.Fprintln(w)
		return
	}

	if descs := registry.Descriptions(); len(descs) > 0 {
		fmt.Fprintf(w, "\n📊 Infrastructure\n")
		for i, d := range descs {
			details := d.Details
			if d.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, d.Port)
			}
			fmt.Fprintf(w, "   %s %s [%s]: %s\n", treePrefix(i, len(descs)), d.Name, d.Type, details)
		}
	}

	if routes := registry.Routes(); len(routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s\n", treePrefix(i, len(routes)), r.Method, r.Path)
		}
	}

	if len(s.clients) > 0 {
		fmt.Fprintf(w, "\n🔌 Clients\n")
		for i, c := range s.clients {
			fmt.Fprintf(w, "   %s %s → %s [%s] (%s)\n", treePrefix(i, len(s.clients)), c.Name, c.Target, c.Type, c.Status)
		}
	}

	if health := registry.HealthAll(ctx); len(health) > 0 {
		fmt.Fprintf(w, "\n🏥 Health Check\n")
		for i, h := range health {
			msg := ""
			if h.Message != "" {
				msg = " (" + h.Message + ")"
			}
			fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(health)), healthIcon(h.Status), h.Name, h.Status, msg)
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthIcon(status component.HealthStatus) string {
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
