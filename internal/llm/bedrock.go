package llm

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/dadmor/campaignforge/internal/config"
	"github.com/dadmor/campaignforge/internal/wizard"
)

// BedrockCompleter runs completions through the AWS Bedrock Converse API.
type BedrockCompleter struct {
	client  *bedrockruntime.Client
	modelID string
}

var _ wizard.Completer = (*BedrockCompleter)(nil)

// NewBedrockCompleter creates a Bedrock-backed completer using the
// default AWS credential chain.
func NewBedrockCompleter(ctx context.Context, cfg config.Config) (*BedrockCompleter, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.BedrockRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.BedrockRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &BedrockCompleter{
		client:  bedrockruntime.NewFromConfig(awsCfg),
		modelID: cfg.LLMModel,
	}, nil
}

// Complete issues one Converse call and returns the first text block of
// the response message.
func (b *BedrockCompleter) Complete(ctx context.Context, req wizard.CompletionRequest) (string, error) {
	user := req.User
	if req.ResponseFormat == wizard.ResponseJSON {
		user += jsonInstruction
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(b.modelID),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.System},
		},
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: user},
				},
			},
		},
	}

	out, err := b.client.Converse(ctx, input)
	if err != nil {
		return "", fmt.Errorf("bedrock converse: %w", err)
	}

	message, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("unexpected bedrock output type %T", out.Output)
	}
	for _, block := range message.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			return text.Value, nil
		}
	}
	return "", fmt.Errorf("bedrock response has no text content")
}
