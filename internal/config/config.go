package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load(".env")
	if root != nil {
		_ = viper.BindPFlags(root.PersistentFlags())
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyLLMProvider, "openai")
	viper.SetDefault(KeyLLMModel, "gpt-4.1")
	viper.SetDefault(KeyLLMTimeout, 2*time.Minute)
	viper.SetDefault(KeyOllamaURL, "http://localhost:11434")
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyMaxDiffTokens, 6000)
	viper.SetDefault(KeyRepoPath, ".")
	viper.SetDefault(KeyMCPListenAddr, ":8080")
}

func LLMProvider() string           { return viper.GetString(KeyLLMProvider) }
func LLMModel() string              { return viper.GetString(KeyLLMModel) }
func LLMTimeout() time.Duration     { return viper.GetDuration(KeyLLMTimeout) }
func OpenAIAPIKey() string          { return viper.GetString(KeyOpenAIAPIKey) }
func OpenAIBaseURL() string         { return viper.GetString(KeyOpenAIBaseURL) }
func OllamaURL() string             { return viper.GetString(KeyOllamaURL) }
func LogLevel() string              { return viper.GetString(KeyLogLevel) }
func PromptsFile() string           { return viper.GetString(KeyPromptsFile) }
func MaxDiffTokens() int            { return viper.GetInt(KeyMaxDiffTokens) }
func GitHubToken() string           { return viper.GetString(KeyGitHubToken) }
func RepoPath() string              { return viper.GetString(KeyRepoPath) }
func MCPListenAddr() string         { return viper.GetString(KeyMCPListenAddr) }
