package core

import "time"

type AppConfig interface {
	GetRuntimePath() string
	GetDatabasePath() string
	GetPromptsPath() string
}

type ProviderConfig interface {
	GetProvider() string
	GetModel() string
}

type ChainConfig interface {
	GetTopK() int
	GetCallTimeout() time.Duration
	GetHistoryTokenBudget() int
	GetPipeline() []string
}
