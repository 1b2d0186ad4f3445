package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiService provides summary embeddings and an alternative vision
// describer backed by Google Generative AI. Multiple API keys may be
// supplied; the service rotates to the next key when a call fails.
type GeminiService struct {
	apiKeys        []string
	currentKey     int
	client         *genai.Client
	embeddingModel string
	visionModel    string
	mu             sync.Mutex
}

func NewGeminiService(apiKeys []string, embeddingModel, visionModel string) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}

	service := &GeminiService{
		apiKeys:        apiKeys,
		currentKey:     0,
		embeddingModel: embeddingModel,
		visionModel:    visionModel,
	}

	err := service.initClient()
	if err != nil {
		return nil, err
	}

	return service, nil
}

func (s *GeminiService) initClient() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *GeminiService) rotateAPIKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	if err := s.client.Close(); err != nil {
		return err
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

// Embed vectorizes summary text with the configured embedding model.
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	em := s.client.EmbeddingModel(s.embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		// Try rotating API key if there's an error
		if err := s.rotateAPIKey(); err != nil {
			return nil, err
		}
		em = s.client.EmbeddingModel(s.embeddingModel)
		res, err = em.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, err
		}
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return res.Embedding.Values, nil
}

func (s *GeminiService) DescribeImage(ctx context.Context, imageB64 string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(imageB64)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	model := s.client.GenerativeModel(s.visionModel)
	resp, err := model.GenerateContent(ctx,
		genai.ImageData("jpeg", data),
		genai.Text(describeImagePrompt),
	)
	if err != nil {
		if err := s.rotateAPIKey(); err != nil {
			return "", err
		}
		model = s.client.GenerativeModel(s.visionModel)
		resp, err = model.GenerateContent(ctx,
			genai.ImageData("jpeg", data),
			genai.Text(describeImagePrompt),
		)
		if err != nil {
			return "", err
		}
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}
	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					content += string(text)
				}
			}
		}
	}
	return content, nil
}
