// Package router keeps the stack of screens shown by the TUI.
package router

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/token-swap/internal/ui"
)

// Screen represents a screen that can be navigated to
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Factory builds the screen for a route. It returns nil for routes it
// does not know.
type Factory func(route ui.Route) Screen

// Router manages navigation between screens using a stack-based approach.
// The root screen is built once and never popped.
type Router struct {
	stack   []Screen
	routes  []ui.Route
	factory Factory
	width   int
	height  int
}

// New creates a router whose root is the screen for root.
func New(root ui.Route, factory Factory) *Router {
	return &Router{
		stack:   []Screen{factory(root)},
		routes:  []ui.Route{root},
		factory: factory,
	}
}

// Init initializes the root screen
func (r *Router) Init() tea.Cmd {
	return r.stack[len(r.stack)-1].Init()
}

// Update processes messages and updates the current screen
func (r *Router) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.RouterMsg:
		return r, r.Navigate(msg.To)

	case tea.WindowSizeMsg:
		r.SetSize(msg.Width, msg.Height)
		return r, nil

	case tea.KeyMsg:
		if msg.String() == "esc" && len(r.stack) > 1 {
			return r, r.Pop()
		}
	}

	current := r.stack[len(r.stack)-1]
	updated, cmd := current.Update(msg)
	r.stack[len(r.stack)-1] = updated
	return r, cmd
}

// View renders the current screen
func (r *Router) View() string {
	return r.stack[len(r.stack)-1].View()
}

// SetSize sets the size for the router and current screen
func (r *Router) SetSize(width, height int) {
	r.width = width
	r.height = height
	r.stack[len(r.stack)-1].SetSize(width, height)
}

// Navigate shows route. The root route unwinds the stack; a route already
// on the stack pops back to it; anything else is pushed.
func (r *Router) Navigate(route ui.Route) tea.Cmd {
	for i := len(r.routes) - 1; i >= 0; i-- {
		if r.routes[i] == route {
			if i == len(r.routes)-1 {
				return nil
			}
			r.stack = r.stack[:i+1]
			r.routes = r.routes[:i+1]
			return r.activate()
		}
	}

	screen := r.factory(route)
	if screen == nil {
		return nil
	}
	r.stack = append(r.stack, screen)
	r.routes = append(r.routes, route)
	return r.activate()
}

// Pop removes the current screen from the stack
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	r.stack = r.stack[:len(r.stack)-1]
	r.routes = r.routes[:len(r.routes)-1]
	return r.activate()
}

func (r *Router) activate() tea.Cmd {
	current := r.stack[len(r.stack)-1]
	current.SetSize(r.width, r.height)
	return current.Init()
}

// Current returns the current screen
func (r *Router) Current() Screen {
	return r.stack[len(r.stack)-1]
}

// CurrentRoute returns the route of the current screen
func (r *Router) CurrentRoute() ui.Route {
	return r.routes[len(r.routes)-1]
}

// Depth returns the current navigation depth
func (r *Router) Depth() int {
	return len(r.stack)
}

// CanGoBack returns true if there are screens to go back to
func (r *Router) CanGoBack() bool {
	return len(r.stack) > 1
}
