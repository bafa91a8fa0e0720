package llm

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockProvider streams completions from Amazon Bedrock via the Converse
// API.
type BedrockProvider struct {
	client *bedrockruntime.Client
}

func NewBedrockProvider(cfg aws.Config) *BedrockProvider {
	return &BedrockProvider{client: bedrockruntime.NewFromConfig(cfg)}
}

func (p *BedrockProvider) Stream(ctx context.Context, req Request, out chan<- string) error {
	input := &bedrockruntime.ConverseStreamInput{
		ModelId: aws.String(req.Model),
		InferenceConfig: &brtypes.InferenceConfiguration{
			Temperature: aws.Float32(float32(req.Temperature)),
		},
	}
	if req.System != "" {
		input.System = []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: req.System},
		}
	}
	for _, msg := range req.Messages {
		role := brtypes.ConversationRoleUser
		if msg.Role == RoleAssistant {
			role = brtypes.ConversationRoleAssistant
		}
		input.Messages = append(input.Messages, brtypes.Message{
			Role: role,
			Content: []brtypes.ContentBlock{
				&brtypes.ContentBlockMemberText{Value: msg.Content},
			},
		})
	}

	resp, err := p.client.ConverseStream(ctx, input)
	if err != nil {
		return fmt.Errorf("starting converse stream: %w", err)
	}
	stream := resp.GetStream()
	defer stream.Close()

	for event := range stream.Events() {
		delta, ok := event.(*brtypes.ConverseStreamOutputMemberContentBlockDelta)
		if !ok {
			continue
		}
		text, ok := delta.Value.Delta.(*brtypes.ContentBlockDeltaMemberText)
		if !ok || text.Value == "" {
			continue
		}
		select {
		case out <- text.Value:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("converse stream: %w", err)
	}
	return nil
}
