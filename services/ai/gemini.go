package aisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/tutor"
)

// GeminiService calls the Google generativelanguage API.
// No timeout is configured beyond the http.Client default.
type GeminiService struct {
	apiKey string
	apiURL string
	client *http.Client
}

var _ tutor.Generator = (*GeminiService)(nil)

func NewGeminiService(conf *core.Config) *GeminiService {
	return &GeminiService{
		apiKey: conf.Gemini.APIKey,
		apiURL: conf.Gemini.URL,
		client: &http.Client{},
	}
}

type (
	generatePart struct {
		Text string `json:"text"`
	}

	generateContent struct {
		Role  string         `json:"role,omitempty"`
		Parts []generatePart `json:"parts"`
	}

	generateRequest struct {
		Contents []generateContent `json:"contents"`
	}

	generateCandidate struct {
		Content generateContent `json:"content"`
	}

	generateResponse struct {
		Candidates []generateCandidate `json:"candidates"`
		Error      *struct {
			Message string `json:"message"`
		} `json:"error,omitempty"`
	}
)

func (svc *GeminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	if svc.apiKey == "" {
		return "", errors.New("gemini API key is not configured")
	}
	reqData := generateRequest{
		Contents: []generateContent{
			{Role: "user", Parts: []generatePart{{Text: prompt}}},
		},
	}
	body, err := json.Marshal(reqData)
	if err != nil {
		return "", errors.Wrap(err, "marshalling request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.apiURL+"?key="+url.QueryEscape(svc.apiKey), bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := svc.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "sending request")
	}
	defer func() { _ = resp.Body.Close() }()

	var respData generateResponse
	if err = json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return "", errors.Wrap(err, "decoding response")
	}
	if respData.Error != nil {
		return "", errors.Errorf("API error: %s", respData.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("API error: %s", resp.Status)
	}

	if len(respData.Candidates) == 0 || len(respData.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return strings.TrimSpace(respData.Candidates[0].Content.Parts[0].Text), nil
}
