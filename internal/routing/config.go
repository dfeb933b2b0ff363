package routing

import (
	"fmt"
	"strings"
)

// RouteConfig represents one route group document in routes.yaml
type RouteConfig struct {
	APIVersion string        `yaml:"apiVersion"`
	Kind       string        `yaml:"kind"`
	Metadata   RouteMetadata `yaml:"metadata"`
	Spec       RouteSpec     `yaml:"spec"`
}

// RouteMetadata contains metadata about the route group
type RouteMetadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Enabled     bool   `yaml:"enabled"`
}

// RouteSpec defines the routes of a group and the middleware they share
type RouteSpec struct {
	Prefix     string            `yaml:"prefix"`
	Middleware []string          `yaml:"middleware"`
	Routes     []RouteDefinition `yaml:"routes"`
}

// RouteDefinition represents a single route
type RouteDefinition struct {
	Path        string      `yaml:"path"`
	Method      interface{} `yaml:"method"` // string or []string
	Handler     string      `yaml:"handler"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Middleware  []string    `yaml:"middleware"`
}

// Validate checks if the route configuration is valid
func (rc *RouteConfig) Validate() error {
	if rc.APIVersion == "" {
		return fmt.Errorf("apiVersion is required")
	}
	if rc.Kind != "RouteGroup" {
		return fmt.Errorf("kind must be RouteGroup, got %q", rc.Kind)
	}
	if rc.Metadata.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}
	for i, route := range rc.Spec.Routes {
		if route.Path == "" {
			return fmt.Errorf("route[%d]: path is required", i)
		}
		if !strings.HasPrefix(route.Path, "/") {
			return fmt.Errorf("route[%d]: path %q must start with /", i, route.Path)
		}
		if route.Handler == "" {
			return fmt.Errorf("route[%d] %s: handler is required", i, route.Path)
		}
		for _, m := range route.GetMethods() {
			if !knownMethods[m] {
				return fmt.Errorf("route[%d] %s: unknown method %q", i, route.Path, m)
			}
		}
	}
	return nil
}

var knownMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true, "HEAD": true,
}

// GetMethods returns the HTTP methods for a route definition as a slice
func (rd *RouteDefinition) GetMethods() []string {
	switch v := rd.Method.(type) {
	case string:
		return []string{strings.ToUpper(v)}
	case []string:
		out := make([]string, len(v))
		for i, m := range v {
			out[i] = strings.ToUpper(m)
		}
		return out
	case []interface{}:
		methods := make([]string, 0, len(v))
		for _, method := range v {
			if s, ok := method.(string); ok {
				methods = append(methods, strings.ToUpper(s))
			}
		}
		return methods
	default:
		return []string{"GET"}
	}
}
