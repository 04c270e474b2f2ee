package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kotoba/data/db/glossary.db"
	}
	if cfg.Storage.ModelDir == "" {
		cfg.Storage.ModelDir = "/usr/local/var/kotoba/data/model"
	}
	if cfg.Retrieval.DefaultK == 0 {
		cfg.Retrieval.DefaultK = 5
	}
	if cfg.Retrieval.MaxK == 0 {
		cfg.Retrieval.MaxK = 100
	}
	if cfg.Retrieval.DefinitionPreview == 0 {
		cfg.Retrieval.DefinitionPreview = 100
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 400
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".tsv", ".txt", ".md", ".csv", ".xlsx", ".pdf", ".docx"}
	}
	if cfg.Translate.BaseURL == "" {
		cfg.Translate.BaseURL = "https://api.deepseek.com/v1"
	}
	if cfg.Translate.APIKeyEnv == "" {
		cfg.Translate.APIKeyEnv = "DEEPSEEK_API_KEY"
	}
	if cfg.Translate.Model == "" {
		cfg.Translate.Model = "deepseek-chat"
	}
	if cfg.Translate.TargetLanguage == "" {
		cfg.Translate.TargetLanguage = "Chinese"
	}
	// A zero temperature cannot be told apart from an unset one.
	if cfg.Translate.Temperature == 0 {
		cfg.Translate.Temperature = 0.3
	}
	if cfg.Translate.MaxTokens == 0 {
		cfg.Translate.MaxTokens = 1000
	}
	if cfg.Translate.TimeoutSecs == 0 {
		cfg.Translate.TimeoutSecs = 30
	}
	if cfg.Translate.TopK == 0 {
		cfg.Translate.TopK = cfg.Retrieval.DefaultK
	}
}
