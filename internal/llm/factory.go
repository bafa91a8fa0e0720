package llm

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// New builds the configured provider. Bedrock is the default; "openai"
// targets OpenAI or any compatible endpoint.
func New(name string, awsCfg aws.Config, openAIKey, openAIBaseURL string) (Provider, error) {
	switch name {
	case "", "bedrock":
		return NewBedrockProvider(awsCfg), nil
	case "openai":
		if openAIKey == "" {
			return nil, fmt.Errorf("openai provider requires an api key")
		}
		return NewOpenAIProvider(openAIKey, openAIBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}
}
