package dock

import (
	"context"
	"time"

	"github.com/1broseidon/edgedock/internal/eventloop"
	"github.com/1broseidon/edgedock/internal/monitor"
	"github.com/1broseidon/edgedock/internal/platform"
)

// Service exposes a Controller to other goroutines by running each call on
// the controller's event loop.
type Service struct {
	c    *Controller
	loop *eventloop.Loop
}

// NewService wraps c. The loop must be running.
func NewService(c *Controller, loop *eventloop.Loop) *Service {
	return &Service{c: c, loop: loop}
}

func (s *Service) Reposition(ctx context.Context) error {
	return s.loop.Do(ctx, s.c.Reposition)
}

func (s *Service) SetAppBar(ctx context.Context, edge platform.Edge) error {
	return s.loop.Do(ctx, func() { s.c.SetAppBar(edge) })
}

func (s *Service) ClearAppBar(ctx context.Context) error {
	return s.loop.Do(ctx, s.c.ClearAppBar)
}

// CycleEdge docks to the edge after the current one.
func (s *Service) CycleEdge(ctx context.Context) (platform.Edge, error) {
	var next platform.Edge
	err := s.loop.Do(ctx, func() {
		next = s.c.Desired().Edge.Next()
		s.c.SetAppBar(next)
	})
	return next, err
}

// Toggle undocks a docked window, or docks a floating one to fallback.
func (s *Service) Toggle(ctx context.Context, fallback platform.Edge) (platform.Edge, error) {
	var edge platform.Edge
	err := s.loop.Do(ctx, func() {
		if s.c.Desired().Edge != platform.EdgeNone {
			s.c.ClearAppBar()
			edge = platform.EdgeNone
			return
		}
		edge = fallback
		s.c.SetAppBar(edge)
	})
	return edge, err
}

// Update applies a change to the current settings through the debouncer.
func (s *Service) Update(ctx context.Context, change func(*Settings)) error {
	return s.loop.Do(ctx, func() {
		next := s.c.Desired()
		change(&next)
		s.c.UpdateSettings(next)
	})
}

// Replace swaps in a whole new settings value immediately.
func (s *Service) Replace(ctx context.Context, settings Settings) error {
	return s.loop.Do(ctx, func() { s.c.ApplySettings(settings) })
}

func (s *Service) Status(ctx context.Context) (Status, error) {
	var st Status
	err := s.loop.Do(ctx, func() { st = s.c.Status() })
	return st, err
}

func (s *Service) Monitors(ctx context.Context) ([]monitor.Descriptor, error) {
	var (
		list    []monitor.Descriptor
		listErr error
	)
	if err := s.loop.Do(ctx, func() { list, listErr = s.c.Monitors() }); err != nil {
		return nil, err
	}
	return list, listErr
}

// Close tears the controller down on the loop.
func (s *Service) Close(ctx context.Context) error {
	return s.loop.Do(ctx, s.c.Close)
}

// SetQuiescence changes the settings debounce window.
func (s *Service) SetQuiescence(ctx context.Context, d time.Duration) error {
	return s.loop.Do(ctx, func() { s.c.SetQuiescence(d) })
}
