package server

import (
	"context"
	"sort"
	"strings"

	"github.com/kbukum/voicegate/component"
)

const componentName = "http-server"

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

// Component puts a Server under the bootstrap lifecycle.
type Component struct {
	server *Server
}

// NewComponent wraps s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

func (sc *Component) Name() string { return componentName }

func (sc *Component) Start(ctx context.Context) error {
	return sc.server.Start(ctx)
}

func (sc *Component) Stop(ctx context.Context) error {
	return sc.server.Stop(ctx)
}

func (sc *Component) Health(_ context.Context) component.Health {
	if sc.server.listener == nil {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not listening"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

func (sc *Component) Describe() component.Description {
	typ := "http"
	if sc.server.tlsConfig != nil {
		typ = "https"
	}
	return component.Description{
		Name:    "HTTP Server",
		Type:    typ,
		Details: sc.server.config.Addr(),
		Port:    sc.server.config.Port,
	}
}

// Routes lists API routes by path, then method, with system routes last.
func (sc *Component) Routes() []component.Route {
	ginRoutes := sc.server.engine.Routes()
	sort.Slice(ginRoutes, func(i, j int) bool {
		iSys, jSys := systemPaths[ginRoutes[i].Path], systemPaths[ginRoutes[j].Path]
		if iSys != jSys {
			return !iSys
		}
		if ginRoutes[i].Path != ginRoutes[j].Path {
			return ginRoutes[i].Path < ginRoutes[j].Path
		}
		return methodOrder(ginRoutes[i].Method) < methodOrder(ginRoutes[j].Method)
	})

	routes := make([]component.Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, component.Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: formatHandlerName(r.Handler),
		})
	}
	return routes
}

var systemPaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/version": true,
}

// formatHandlerName shortens gin's handler names:
// "github.com/kbukum/voicegate/api.(*ASRHandler).Upload-fm" becomes
// "ASRHandler.Upload".
func formatHandlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	for len(parts) > 1 && strings.HasPrefix(parts[len(parts)-1], "func") {
		parts = parts[:len(parts)-1]
	}
	if len(parts) > 1 && strings.ToLower(parts[0]) == parts[0] {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}

func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
