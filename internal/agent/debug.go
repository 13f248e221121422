package agent

import (
	"log"

	"github.com/okmesh/agentmesh/internal/config"
)

func debugLog(cfg *config.Config, format string, args ...interface{}) {
	if cfg.Debug {
		log.Printf("[DEBUG] "+format, args...)
	}
}
