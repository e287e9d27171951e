package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// GetLoadedPrompts returns the loaded prompt content in a thread-safe way
func GetLoadedPrompts() *AllLoadedPrompts {
	return &loadedPrompts
}

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	// Initialize loaded prompts exactly once
	loadedPromptsOnce.Do(func() {
		loadedPrompts = AllLoadedPrompts{}
	})

	// Load global prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.CustomPrompts.SystemPrompts, &loadedPrompts.Global.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load global system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.CustomPrompts.UserPrompts, &loadedPrompts.Global.UserPrompts); err != nil {
		return fmt.Errorf("failed to load global user prompts: %w", err)
	}

	// Load operation-specific prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.Requirements.CustomPrompts.SystemPrompts, &loadedPrompts.Requirements.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load requirements system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Requirements.CustomPrompts.UserPrompts, &loadedPrompts.Requirements.UserPrompts); err != nil {
		return fmt.Errorf("failed to load requirements user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.Recommend.CustomPrompts.SystemPrompts, &loadedPrompts.Recommend.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load recommend system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Recommend.CustomPrompts.UserPrompts, &loadedPrompts.Recommend.UserPrompts); err != nil {
		return fmt.Errorf("failed to load recommend user prompts: %w", err)
	}

	// Log summary of prompt sources after loading
	c.logPromptLoadingSummary()

	return nil
}

// loadSystemPromptsFromFiles loads system prompts from files if file paths are specified
func (c *Config) loadSystemPromptsFromFiles(prompts *SystemPrompts, target *LoadedSystemPrompts) error {
	if prompts.ExtractRequirementsFile != "" {
		content, err := c.loadPromptFromFile(prompts.ExtractRequirementsFile, "system", "extractRequirements")
		if err != nil {
			return err
		}
		target.ExtractRequirements = content
	}

	if prompts.DraftRecommendationsFile != "" {
		content, err := c.loadPromptFromFile(prompts.DraftRecommendationsFile, "system", "draftRecommendations")
		if err != nil {
			return err
		}
		target.DraftRecommendations = content
	}

	return nil
}

// loadUserPromptsFromFiles loads user prompts from files if file paths are specified
func (c *Config) loadUserPromptsFromFiles(prompts *UserPrompts, target *LoadedUserPrompts) error {
	if prompts.ExtractRequirementsFile != "" {
		content, err := c.loadPromptFromFile(prompts.ExtractRequirementsFile, "user", "extractRequirements")
		if err != nil {
			return err
		}
		target.ExtractRequirements = content
	}

	if prompts.DraftRecommendationsFile != "" {
		content, err := c.loadPromptFromFile(prompts.DraftRecommendationsFile, "user", "draftRecommendations")
		if err != nil {
			return err
		}
		target.DraftRecommendations = content
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	// Log successful loading
	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	// Helper function to validate a file path
	validateFile := func(filePath, promptType, operation string) {
		if filePath == "" {
			return // No file specified, skip validation
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	// Validate global prompt files
	validateFile(c.AI.CustomPrompts.SystemPrompts.ExtractRequirementsFile, "system", "extractRequirements")
	validateFile(c.AI.CustomPrompts.SystemPrompts.DraftRecommendationsFile, "system", "draftRecommendations")
	validateFile(c.AI.CustomPrompts.UserPrompts.ExtractRequirementsFile, "user", "extractRequirements")
	validateFile(c.AI.CustomPrompts.UserPrompts.DraftRecommendationsFile, "user", "draftRecommendations")

	// Validate operation-specific prompt files
	validateFile(c.AI.Requirements.CustomPrompts.SystemPrompts.ExtractRequirementsFile, "requirements system", "extractRequirements")
	validateFile(c.AI.Requirements.CustomPrompts.UserPrompts.ExtractRequirementsFile, "requirements user", "extractRequirements")
	validateFile(c.AI.Recommend.CustomPrompts.SystemPrompts.DraftRecommendationsFile, "recommend system", "draftRecommendations")
	validateFile(c.AI.Recommend.CustomPrompts.UserPrompts.DraftRecommendationsFile, "recommend user", "draftRecommendations")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary() {
	promptCount := 0

	promptChecks := []struct {
		content string
		message string
	}{
		{loadedPrompts.Global.SystemPrompts.ExtractRequirements, "[CONFIG] Global system requirements prompt: loaded from config/file"},
		{loadedPrompts.Global.SystemPrompts.DraftRecommendations, "[CONFIG] Global system recommend prompt: loaded from config/file"},
		{loadedPrompts.Global.UserPrompts.ExtractRequirements, "[CONFIG] Global user requirements prompt: loaded from config/file"},
		{loadedPrompts.Global.UserPrompts.DraftRecommendations, "[CONFIG] Global user recommend prompt: loaded from config/file"},
		{loadedPrompts.Requirements.SystemPrompts.ExtractRequirements, "[CONFIG] Requirements-specific system prompt: loaded from config/file"},
		{loadedPrompts.Requirements.UserPrompts.ExtractRequirements, "[CONFIG] Requirements-specific user prompt: loaded from config/file"},
		{loadedPrompts.Recommend.SystemPrompts.DraftRecommendations, "[CONFIG] Recommend-specific system prompt: loaded from config/file"},
		{loadedPrompts.Recommend.UserPrompts.DraftRecommendations, "[CONFIG] Recommend-specific user prompt: loaded from config/file"},
	}

	for _, check := range promptChecks {
		if check.content != "" {
			log.Println(check.message)
			promptCount++
		}
	}

	if promptCount > 0 {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}
}
