package screen

import (
	"context"

	"github.com/rovshanmuradov/token-swap/internal/export"
	"github.com/rovshanmuradov/token-swap/internal/format"
	"github.com/rovshanmuradov/token-swap/internal/logger"
	"github.com/rovshanmuradov/token-swap/internal/numeric"
	"github.com/rovshanmuradov/token-swap/internal/session"
	"github.com/rovshanmuradov/token-swap/internal/ui"
	"github.com/rovshanmuradov/token-swap/internal/ui/component"
	"github.com/rovshanmuradov/token-swap/internal/ui/router"
)

// Deps are the services screens work with. Driver is required.
type Deps struct {
	Driver    *session.Driver
	Numeric   *numeric.Engine
	Logs      *logger.LogBuffer
	Exporter  *export.ReceiptExporter
	ExportDir string
}

func (d Deps) logSource() component.LogSource {
	if d.Logs == nil {
		return nil
	}
	return d.Logs
}

func (d Deps) engine() *numeric.Engine {
	if d.Numeric == nil {
		return numeric.Default()
	}
	return d.Numeric
}

func (d Deps) formatter() *format.Formatter {
	return format.New(d.engine())
}

// NewFactory builds screens for the router. The swap screen is created
// once so its form survives trips to other screens.
func NewFactory(ctx context.Context, deps Deps) router.Factory {
	var swap *SwapScreen
	return func(route ui.Route) router.Screen {
		switch route {
		case ui.RouteSwap:
			if swap == nil {
				swap = NewSwapScreen(ctx, deps)
			}
			return swap
		case ui.RouteHistory:
			return NewHistoryScreen(deps)
		case ui.RouteLogs:
			return NewLogsScreen(deps)
		default:
			return nil
		}
	}
}
