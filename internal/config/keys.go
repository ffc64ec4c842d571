package config

const (
	KeyLLMProvider   = "llm_provider"
	KeyLLMModel      = "llm_model"
	KeyLLMTimeout    = "llm_call_timeout"
	KeyOpenAIAPIKey  = "openai_api_key"
	KeyOpenAIBaseURL = "openai_base_url"
	KeyOllamaURL     = "ollama_url"
	KeyLogLevel      = "log_level"
	KeyPromptsFile   = "prompts_file"
	KeyMaxDiffTokens = "max_diff_tokens"
	KeyGitHubToken   = "github_token"
	KeyRepoPath      = "repo_path"
	KeyMCPListenAddr = "mcp_listen_addr"
)
