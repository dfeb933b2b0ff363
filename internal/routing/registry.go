package routing

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// HandlerRegistry maps the handler and middleware names used in routes.yaml
// to gin handlers. Everything is registered once at startup, before Build.
type HandlerRegistry struct {
	mu         sync.RWMutex
	handlers   map[string]gin.HandlerFunc
	middleware map[string]gin.HandlerFunc
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers:   make(map[string]gin.HandlerFunc),
		middleware: make(map[string]gin.HandlerFunc),
	}
}

func add(mu *sync.RWMutex, into map[string]gin.HandlerFunc, kind, name string, fn gin.HandlerFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("%s needs a name and a function", kind)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, exists := into[name]; exists {
		return fmt.Errorf("%s %s already registered", kind, name)
	}
	into[name] = fn
	return nil
}

func lookup(mu *sync.RWMutex, from map[string]gin.HandlerFunc, kind, name string) (gin.HandlerFunc, error) {
	mu.RLock()
	defer mu.RUnlock()
	fn, ok := from[name]
	if !ok {
		return nil, fmt.Errorf("%s %s not registered", kind, name)
	}
	return fn, nil
}

func (r *HandlerRegistry) Register(name string, handler gin.HandlerFunc) error {
	return add(&r.mu, r.handlers, "handler", name, handler)
}

func (r *HandlerRegistry) RegisterMiddleware(name string, mw gin.HandlerFunc) error {
	return add(&r.mu, r.middleware, "middleware", name, mw)
}

// RegisterBatch registers handlers in name order so a clash is reported the
// same way on every run.
func (r *HandlerRegistry) RegisterBatch(handlers map[string]gin.HandlerFunc) error {
	for _, name := range sortedKeys(handlers) {
		if err := r.Register(name, handlers[name]); err != nil {
			return err
		}
	}
	return nil
}

func (r *HandlerRegistry) RegisterMiddlewareBatch(mws map[string]gin.HandlerFunc) error {
	for _, name := range sortedKeys(mws) {
		if err := r.RegisterMiddleware(name, mws[name]); err != nil {
			return err
		}
	}
	return nil
}

func (r *HandlerRegistry) GetMiddleware(name string) (gin.HandlerFunc, error) {
	return lookup(&r.mu, r.middleware, "middleware", name)
}

// GetHandlerChain resolves a route: its middleware in order, then the handler.
func (r *HandlerRegistry) GetHandlerChain(middlewareNames []string, handlerName string) ([]gin.HandlerFunc, error) {
	chain := make([]gin.HandlerFunc, 0, len(middlewareNames)+1)
	for _, name := range middlewareNames {
		mw, err := r.GetMiddleware(name)
		if err != nil {
			return nil, err
		}
		chain = append(chain, mw)
	}
	h, err := lookup(&r.mu, r.handlers, "handler", handlerName)
	if err != nil {
		return nil, err
	}
	return append(chain, h), nil
}

// Unresolved lists every name the enabled groups use that has nothing
// registered under it, prefixed "handler " or "middleware ".
func (r *HandlerRegistry) Unresolved(configs []*RouteConfig) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	missing := map[string]bool{}
	checkMW := func(names []string) {
		for _, n := range names {
			if _, ok := r.middleware[n]; !ok {
				missing["middleware "+n] = true
			}
		}
	}
	for _, config := range configs {
		if !config.Metadata.Enabled {
			continue
		}
		checkMW(config.Spec.Middleware)
		for _, route := range config.Spec.Routes {
			checkMW(route.Middleware)
			if _, ok := r.handlers[route.Handler]; !ok {
				missing["handler "+route.Handler] = true
			}
		}
	}

	out := make([]string, 0, len(missing))
	for k := range missing {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]gin.HandlerFunc) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
