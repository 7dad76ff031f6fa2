package app

import (
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/http/handlers"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

type Handlers struct {
	Health      *handlers.HealthHandler
	Dictionary  *handlers.DictionaryHandler
	Explanation *handlers.ExplanationHandler
	Override    *handlers.OverrideHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      handlers.NewHealthHandler(),
		Dictionary:  handlers.NewDictionaryHandler(log, services.Dictionary),
		Explanation: handlers.NewExplanationHandler(log, services.Explanations),
		Override:    handlers.NewOverrideHandler(log, services.Overrides),
	}
}
