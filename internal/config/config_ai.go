package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetRequirementsConfig returns the AI configuration for the job requirement
// extraction operation with fallback to global config
func (c *Config) GetRequirementsConfig() OperationAIConfig {
	config := c.AI.Requirements

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply requirements-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.ExtractRequirements == "" {
		config.CustomPrompts.SystemPrompts.ExtractRequirements = c.AI.CustomPrompts.SystemPrompts.ExtractRequirements
	}
	if config.CustomPrompts.UserPrompts.ExtractRequirements == "" {
		config.CustomPrompts.UserPrompts.ExtractRequirements = c.AI.CustomPrompts.UserPrompts.ExtractRequirements
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.ExtractRequirementsFile == "" {
		config.CustomPrompts.SystemPrompts.ExtractRequirementsFile = c.AI.CustomPrompts.SystemPrompts.ExtractRequirementsFile
	}
	if config.CustomPrompts.UserPrompts.ExtractRequirementsFile == "" {
		config.CustomPrompts.UserPrompts.ExtractRequirementsFile = c.AI.CustomPrompts.UserPrompts.ExtractRequirementsFile
	}

	return config
}

// GetRecommendConfig returns the AI configuration for the recommendation
// drafting operation with fallback to global config
func (c *Config) GetRecommendConfig() OperationAIConfig {
	config := c.AI.Recommend

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply recommend-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.DraftRecommendations == "" {
		config.CustomPrompts.SystemPrompts.DraftRecommendations = c.AI.CustomPrompts.SystemPrompts.DraftRecommendations
	}
	if config.CustomPrompts.UserPrompts.DraftRecommendations == "" {
		config.CustomPrompts.UserPrompts.DraftRecommendations = c.AI.CustomPrompts.UserPrompts.DraftRecommendations
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.DraftRecommendationsFile == "" {
		config.CustomPrompts.SystemPrompts.DraftRecommendationsFile = c.AI.CustomPrompts.SystemPrompts.DraftRecommendationsFile
	}
	if config.CustomPrompts.UserPrompts.DraftRecommendationsFile == "" {
		config.CustomPrompts.UserPrompts.DraftRecommendationsFile = c.AI.CustomPrompts.UserPrompts.DraftRecommendationsFile
	}

	return config
}

// GetLoadedRequirementsPrompts returns a copy of the loaded prompts for the
// requirements operation
func (c *Config) GetLoadedRequirementsPrompts() OperationLoadedPrompts {
	return loadedPrompts.Requirements
}

// GetLoadedRecommendPrompts returns a copy of the loaded prompts for the
// recommend operation
func (c *Config) GetLoadedRecommendPrompts() OperationLoadedPrompts {
	return loadedPrompts.Recommend
}

// GetLoadedGlobalPrompts returns a copy of the loaded global prompts
func (c *Config) GetLoadedGlobalPrompts() LoadedPrompts {
	return loadedPrompts.Global
}
