package provisioning

import (
	"fmt"

	"github.com/nicodoggie/devctl-plugin-kind/internal/config"
)

// ValidationPhase implements the Phase interface for pre-flight validation.
// It also loads the node topology when the context has none.
type ValidationPhase struct{}

// NewValidationPhase creates a new validation phase.
func NewValidationPhase() *ValidationPhase {
	return &ValidationPhase{}
}

// Name implements the Phase interface.
func (vp *ValidationPhase) Name() string {
	return "validation"
}

// Provision implements the Phase interface.
func (vp *ValidationPhase) Provision(ctx *Context) error {
	if ctx.Config == nil {
		return fmt.Errorf("no configuration loaded")
	}

	var errs config.ValidationErrors
	for _, ve := range ctx.Config.Check() {
		if ve.IsError() {
			errs = append(errs, ve)
			ctx.Observer.Event(Event{
				Type:     EventValidationError,
				Phase:    vp.Name(),
				Resource: ve.Field,
				Message:  ve.Message,
				Err:      ve,
			})
			continue
		}
		ctx.Observer.Event(Event{
			Type:     EventValidationWarning,
			Phase:    vp.Name(),
			Resource: ve.Field,
			Message:  ve.Message,
		})
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errs)
	}

	if ctx.Topology == nil {
		topo, err := config.LoadTopology(ctx.Config.ProjectRoot)
		if err != nil {
			return fmt.Errorf("failed to load node topology: %w", err)
		}
		ctx.Topology = topo
	}
	return nil
}
