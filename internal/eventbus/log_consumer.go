package eventbus

import (
	"context"
	"strings"

	"github.com/untillpro/goutils/logger"
)

// LogConsumer logs every regeneration for the operator.
type LogConsumer struct{}

func NewLogConsumer() *LogConsumer { return &LogConsumer{} }

func (c *LogConsumer) HandleEvent(_ context.Context, evt Regenerated) error {
	if evt.Error != "" {
		logger.Error("regenerate", evt.Project, "failed:", evt.Error)
		return nil
	}
	logger.Info("regenerated", evt.Path, "tables:", evt.Tables, "relationships:", evt.Relationships)
	if len(evt.Warnings) > 0 {
		logger.Warning("regenerate", evt.Project, "warnings:", strings.Join(evt.Warnings, "; "))
	}
	return nil
}
