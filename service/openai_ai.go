package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/tranmq/docrag-be/types"
)

const summaryPrompt = `You are an assistant tasked with summarizing tables and text.
Give a concise summary of the tables or text.

Respond with only summary, no additional comment.
Do not start your message by saying "Here is a summary" or anything like that.
Just provide the summary as it is.

Table or text chunk: %s`

const describeImagePrompt = "describe the image in detail"

const answerSystemPrompt = "You are a technical assistant. Answer the question using only the provided document excerpts. If the excerpts do not contain the answer, say so."

// OpenAIService talks to any OpenAI-compatible completion endpoint
// (Together, local servers, OpenAI itself). It covers text and table
// summarization, image description through a vision model, and answer
// generation over retrieved chunks.
type OpenAIService struct {
	client      *openai.Client
	textModel   string
	visionModel string
}

func NewOpenAIService(baseURL, apiKey, textModel, visionModel string) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	client := openai.NewClientWithConfig(config)
	return &OpenAIService{
		client:      client,
		textModel:   textModel,
		visionModel: visionModel,
	}
}

func (s *OpenAIService) SummarizeText(ctx context.Context, text string) (string, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.textModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf(summaryPrompt, text),
				},
			},
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) DescribeImage(ctx context.Context, imageB64 string) (string, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.visionModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: describeImagePrompt,
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL: ImageDataURI(imageB64),
							},
						},
					},
				},
			},
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}

// Answer builds a multi-modal prompt from the retrieved chunks: text and
// table content goes in as text parts, image chunks as image parts, so the
// vision model can read figures the text excerpts reference.
func (s *OpenAIService) Answer(ctx context.Context, question string, chunks []types.RetrievedChunk) (string, error) {
	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: buildAnswerPrompt(question, chunks),
		},
	}
	model := s.textModel
	for _, chunk := range chunks {
		if chunk.Kind != types.ChunkKindImage {
			continue
		}
		model = s.visionModel
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: ImageDataURI(chunk.Content),
			},
		})
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: answerSystemPrompt,
				},
				{
					Role:         openai.ChatMessageRoleUser,
					MultiContent: parts,
				},
			},
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildAnswerPrompt(question string, chunks []types.RetrievedChunk) string {
	var sb strings.Builder
	sb.WriteString("Document excerpts:\n\n")
	for i, chunk := range chunks {
		switch chunk.Kind {
		case types.ChunkKindImage:
			fmt.Fprintf(&sb, "[%d] (image from %s, page %d, attached below)\n\n",
				i+1, chunk.Metadata.Title, chunk.Metadata.PageNum)
		default:
			fmt.Fprintf(&sb, "[%d] (%s from %s, page %d)\n%s\n\n",
				i+1, chunk.Kind, chunk.Metadata.Title, chunk.Metadata.PageNum, chunk.Content)
		}
	}
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}

// ImageDataURI wraps base64 image bytes in the data URI form the chat
// vision endpoints expect.
func ImageDataURI(imageB64 string) string {
	return "data:image/jpeg;base64," + imageB64
}
