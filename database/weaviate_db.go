package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tranmq/docrag-be/config"
	"github.com/tranmq/docrag-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

var (
	SUMMARY_CLASS        = "SummaryChunk"
	SUMMARY_CLASS_OBJECT = &models.Class{
		Class: SUMMARY_CLASS,
		Properties: []*models.Property{
			{Name: "summary", DataType: []string{"text"}},
			{Name: "docId", DataType: []string{"text"}},
			{Name: "kind", DataType: []string{"text"}},
			{Name: "createdAt", DataType: []string{"int"}},
		},
		VectorIndexType: "hnsw",
	}
)

// WeaviateIndex stores summary entries in a Weaviate class and answers
// nearText queries over them. Only the summary property is vectorized; the
// original chunk content never leaves the content store.
type WeaviateIndex struct {
	client *weaviate.Client
}

func NewWeaviateIndex(config config.WeaviateConfig) (*WeaviateIndex, error) {
	var scheme string
	if strings.Contains(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
		cfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     config.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	SUMMARY_CLASS_OBJECT.Vectorizer = config.Text2Vec
	SUMMARY_CLASS_OBJECT.ModuleConfig = config.ModuleConfig
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}

	hasSummaryClass := false
	for _, class := range schema.Classes {
		if class.Class == SUMMARY_CLASS {
			hasSummaryClass = true
			break
		}
	}
	if !hasSummaryClass {
		err = client.Schema().ClassCreator().WithClass(SUMMARY_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create SummaryChunk class: %v", err)
		}
	}
	return &WeaviateIndex{
		client: client,
	}, nil
}

// ReInit drops and recreates the summary class. Any content store holding
// identifiers from the dropped class must be reset alongside it.
func (s *WeaviateIndex) ReInit() error {
	err := s.client.Schema().ClassDeleter().WithClassName(SUMMARY_CLASS).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to delete SummaryChunk class: %v", err)
	}

	err = s.client.Schema().ClassCreator().WithClass(SUMMARY_CLASS_OBJECT).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create SummaryChunk class: %v", err)
	}
	return nil
}

func (s *WeaviateIndex) Add(ctx context.Context, entries []types.SummaryEntry) error {
	total := len(entries)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			properties := map[string]interface{}{
				"summary":   entries[j].Summary,
				"docId":     entries[j].ID,
				"kind":      string(entries[j].Kind),
				"createdAt": time.Now().Unix(),
			}
			batcher = batcher.WithObjects(&models.Object{
				Class:      SUMMARY_CLASS,
				Properties: properties,
			})
		}

		resp, err := batcher.Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}
		for _, obj := range resp {
			if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
				return fmt.Errorf("failed to insert summary object: %v", obj.Result.Errors.Error[0].Message)
			}
		}
	}

	return nil
}

func (s *WeaviateIndex) Query(ctx context.Context, query string, topK int) ([]string, error) {
	if topK <= 0 {
		return nil, nil
	}

	fields := []graphql.Field{
		{Name: "docId"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	result, err := s.client.GraphQL().Get().
		WithClassName(SUMMARY_CLASS).
		WithFields(fields...).
		WithNearText(nearText).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	var ids []string
	if data, ok := result.Data["Get"].(map[string]interface{})[SUMMARY_CLASS].([]interface{}); ok {
		for _, item := range data {
			if obj, ok := item.(map[string]interface{}); ok {
				if id, ok := obj["docId"].(string); ok {
					ids = append(ids, id)
				}
			}
		}
	}
	return ids, nil
}

func (s *WeaviateIndex) Count(ctx context.Context) (int, error) {
	result, err := s.client.GraphQL().Aggregate().
		WithClassName(SUMMARY_CLASS).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if result.Errors != nil {
		return 0, fmt.Errorf("aggregate failed: %v", result.Errors[0].Message)
	}

	if data, ok := result.Data["Aggregate"].(map[string]interface{})[SUMMARY_CLASS].([]interface{}); ok && len(data) > 0 {
		if obj, ok := data[0].(map[string]interface{}); ok {
			if meta, ok := obj["meta"].(map[string]interface{}); ok {
				if count, ok := meta["count"].(float64); ok {
					return int(count), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("unexpected aggregate response shape")
}
