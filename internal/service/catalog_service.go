package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	bedrocktypes "github.com/aws/aws-sdk-go-v2/service/bedrock/types"
)

// Versioned model ids look like "...-v2" or "...-v2:1". Ids ending in a
// digit+k suffix ("...-v1-100k") are context-window size variants and are
// filtered out of the picker.
var (
	versionedRe  = regexp.MustCompile(`v\d+`)
	sizeSuffixRe = regexp.MustCompile(`(?i)\dk$`)
)

// ModelLister is the slice of the Bedrock control-plane client the catalog
// needs.
type ModelLister interface {
	ListFoundationModels(ctx context.Context, params *bedrock.ListFoundationModelsInput, optFns ...func(*bedrock.Options)) (*bedrock.ListFoundationModelsOutput, error)
}

type ModelCatalog struct {
	client ModelLister
}

func NewModelCatalog(client ModelLister) *ModelCatalog {
	return &ModelCatalog{client: client}
}

// List returns the ids of text-output foundation models that pass the
// versioned-release filter, in the order the API returns them.
func (c *ModelCatalog) List(ctx context.Context) ([]string, error) {
	out, err := c.client.ListFoundationModels(ctx, &bedrock.ListFoundationModelsInput{
		ByOutputModality: bedrocktypes.ModelModalityText,
	})
	if err != nil {
		return nil, fmt.Errorf("listing foundation models: %w", err)
	}

	var ids []string
	for _, summary := range out.ModelSummaries {
		if summary.ModelId == nil {
			continue
		}
		if id := *summary.ModelId; keepModelID(id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func keepModelID(id string) bool {
	return versionedRe.MatchString(id) && !sizeSuffixRe.MatchString(id)
}
