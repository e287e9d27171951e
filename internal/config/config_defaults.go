package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.useSystemPrompts", true)

	// AI Configuration - Requirements extraction defaults
	v.SetDefault("ai.requirements.provider", "gemini")
	v.SetDefault("ai.requirements.model", "")
	v.SetDefault("ai.requirements.timeout", 60*time.Second)
	v.SetDefault("ai.requirements.apiKey", "")
	v.SetDefault("ai.requirements.maxRetries", 3)
	v.SetDefault("ai.requirements.temperature", 0.1) // Low temperature for factual extraction
	v.SetDefault("ai.requirements.useSystemPrompts", true)

	// AI Configuration - Recommendation drafting defaults
	v.SetDefault("ai.recommend.provider", "gemini")
	v.SetDefault("ai.recommend.model", "")
	v.SetDefault("ai.recommend.timeout", 90*time.Second) // Longer timeout for drafting
	v.SetDefault("ai.recommend.apiKey", "")
	v.SetDefault("ai.recommend.maxRetries", 2)
	v.SetDefault("ai.recommend.temperature", 0.4) // Some variety in suggested wording
	v.SetDefault("ai.recommend.useSystemPrompts", true)

	// Circuit Breaker Configuration defaults for all operations
	v.SetDefault("ai.requirements.circuitBreaker.enabled", true)
	v.SetDefault("ai.requirements.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.requirements.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.requirements.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.requirements.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.requirements.circuitBreaker.failureThreshold", 0.6)

	v.SetDefault("ai.recommend.circuitBreaker.enabled", true)
	v.SetDefault("ai.recommend.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.recommend.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.recommend.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.recommend.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.recommend.circuitBreaker.failureThreshold", 0.6)

	// Client-side AI rate limiting
	v.SetDefault("ai.rateLimit.enabled", false)
	v.SetDefault("ai.rateLimit.requestsPerMin", 30)
	v.SetDefault("ai.rateLimit.burstCapacity", 5)

	// Gap analysis policy
	v.SetDefault("analysis.matching", "token")
	v.SetDefault("analysis.weakThreshold", 1)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "text")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB
	v.SetDefault("app.minResumeChars", 100)
	v.SetDefault("app.minJobChars", 50)

	// Watch mode
	v.SetDefault("watch.debounceDelay", 500*time.Millisecond)

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.aiKey", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumizer")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	// Tracing Configuration
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Custom Metrics Configuration
	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackModelInfo", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackContentSizes", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackWatchReloads", true)

	// Console Configuration
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration: off by default, a one-shot CLI run has
	// nothing to scrape. Useful under analyze --watch.
	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	// Health Check Configuration
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}
