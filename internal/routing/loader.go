package routing

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var defaultRoutes []byte

// DefaultConfigs parses the route table compiled into the binary.
func DefaultConfigs() ([]*RouteConfig, error) {
	return LoadConfigs(defaultRoutes)
}

// LoadConfigs parses a multi-document YAML route table.
func LoadConfigs(data []byte) ([]*RouteConfig, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var configs []*RouteConfig
	for {
		var config RouteConfig
		err := dec.Decode(&config)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid route group %q: %w", config.Metadata.Name, err)
		}
		configs = append(configs, &config)
	}
	if len(configs) == 0 {
		return nil, errors.New("route table is empty")
	}
	return configs, nil
}

// Options controls the routes Build adds around the table.
type Options struct {
	// DefaultView returns where "/" and unknown paths go. It is read per
	// request.
	DefaultView func() string
	// FallbackMiddleware guards the unknown-path redirect.
	FallbackMiddleware []string
	Logger             *zap.Logger
}

// Build registers every enabled group on engine. A handler or middleware
// name missing from the registry is an error, as is a duplicate route.
func Build(engine *gin.Engine, registry *HandlerRegistry, configs []*RouteConfig, opts Options) error {
	if opts.DefaultView == nil {
		opts.DefaultView = func() string { return "/dashboard" }
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	if missing := registry.Unresolved(configs); len(missing) > 0 {
		return fmt.Errorf("route table refers to unregistered names: %s", strings.Join(missing, ", "))
	}

	seen := make(map[string]string)
	for _, config := range configs {
		if !config.Metadata.Enabled {
			opts.Logger.Debug("skipping disabled route group", zap.String("group", config.Metadata.Name))
			continue
		}

		groupChain, err := resolveMiddleware(registry, config.Spec.Middleware)
		if err != nil {
			return fmt.Errorf("group %s: %w", config.Metadata.Name, err)
		}
		group := engine.Group(config.Spec.Prefix, groupChain...)

		for _, route := range config.Spec.Routes {
			chain, err := registry.GetHandlerChain(route.Middleware, route.Handler)
			if err != nil {
				return fmt.Errorf("route %s: %w", route.Path, err)
			}
			for _, method := range route.GetMethods() {
				key := method + " " + config.Spec.Prefix + route.Path
				if prev, dup := seen[key]; dup {
					return fmt.Errorf("route %s declared by both %s and %s", key, prev, config.Metadata.Name)
				}
				seen[key] = config.Metadata.Name
				group.Handle(method, route.Path, chain...)
			}
		}
		opts.Logger.Debug("registered route group",
			zap.String("group", config.Metadata.Name),
			zap.Int("routes", len(config.Spec.Routes)))
	}

	redirect := func(c *gin.Context) {
		c.Redirect(http.StatusFound, opts.DefaultView())
	}
	if _, taken := seen["GET /"]; !taken {
		engine.GET("/", redirect)
	}

	fallback, err := resolveMiddleware(registry, opts.FallbackMiddleware)
	if err != nil {
		return fmt.Errorf("fallback: %w", err)
	}
	engine.NoRoute(append(fallback, redirect)...)
	return nil
}

func resolveMiddleware(registry *HandlerRegistry, names []string) ([]gin.HandlerFunc, error) {
	chain := make([]gin.HandlerFunc, 0, len(names))
	for _, name := range names {
		mw, err := registry.GetMiddleware(name)
		if err != nil {
			return nil, err
		}
		chain = append(chain, mw)
	}
	return chain, nil
}

// RouteEntry is one row of the flattened route table.
type RouteEntry struct {
	Group      string
	Method     string
	Path       string
	Handler    string
	Name       string
	Middleware []string
}

// Table flattens configs in declaration order, with group middleware first.
func Table(configs []*RouteConfig) []RouteEntry {
	var out []RouteEntry
	for _, config := range configs {
		if !config.Metadata.Enabled {
			continue
		}
		for _, route := range config.Spec.Routes {
			mws := append(append([]string{}, config.Spec.Middleware...), route.Middleware...)
			for _, method := range route.GetMethods() {
				out = append(out, RouteEntry{
					Group:      config.Metadata.Name,
					Method:     method,
					Path:       config.Spec.Prefix + route.Path,
					Handler:    route.Handler,
					Name:       route.Name,
					Middleware: mws,
				})
			}
		}
	}
	return out
}
