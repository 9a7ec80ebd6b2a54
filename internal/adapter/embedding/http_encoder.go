package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// HTTPEncoder calls an OpenAI-compatible /embeddings endpoint. It is the
// external sentence-embedding collaborator behind the Encoder port; the
// chunking core never loads models itself.
type HTTPEncoder struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	batchSize int
	client    *http.Client
}

// Options configures an HTTPEncoder.
type Options struct {
	BaseURL   string // default https://api.openai.com/v1
	APIKeyEnv string // environment variable holding the API key; empty skips auth
	Model     string
	BatchSize int // sentences per request, default 100
	Timeout   time.Duration
}

type encodeRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type encodeResponse struct {
	Data  []encodeData `json:"data"`
	Error *apiError    `json:"error,omitempty"`
}

type encodeData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewHTTPEncoder creates an encoder for an OpenAI-compatible embeddings
// API. The API key is resolved from the environment at construction time.
func NewHTTPEncoder(opts Options) (*HTTPEncoder, error) {
	if opts.Model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	var apiKey string
	if opts.APIKeyEnv != "" {
		apiKey = os.Getenv(opts.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("API key not found in environment variable: %s", opts.APIKeyEnv)
		}
	}

	return &HTTPEncoder{
		apiKey:    apiKey,
		model:     opts.Model,
		baseURL:   opts.BaseURL,
		dimension: modelDimension(opts.Model),
		batchSize: opts.BatchSize,
		client:    &http.Client{Timeout: opts.Timeout},
	}, nil
}

func modelDimension(model string) int {
	switch model {
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	case "text-embedding-3-large":
		return 3072
	case "nomic-embed-text":
		return 768
	case "mxbai-embed-large":
		return 1024
	case "all-minilm", "snowflake-arctic-embed-s":
		return 384
	default:
		return 1536
	}
}

// Encode embeds sentences, batching requests to the configured size.
func (e *HTTPEncoder) Encode(sentences []string) ([][]float32, error) {
	if len(sentences) == 0 {
		return nil, nil
	}

	var all [][]float32
	for i := 0; i < len(sentences); i += e.batchSize {
		end := i + e.batchSize
		if end > len(sentences) {
			end = len(sentences)
		}
		vectors, err := e.encodeBatch(sentences[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vectors...)
	}

	return all, nil
}

func (e *HTTPEncoder) encodeBatch(sentences []string) ([][]float32, error) {
	payload, err := json.Marshal(encodeRequest{Input: sentences, Model: e.model})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed encodeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("embedding API error: %s", parsed.Error.Message)
	}

	vectors := make([][]float32, len(sentences))
	for _, d := range parsed.Data {
		if d.Index >= 0 && d.Index < len(vectors) {
			vectors[d.Index] = d.Embedding
		}
	}

	return vectors, nil
}

// Dimension returns the embedding vector dimension.
func (e *HTTPEncoder) Dimension() int {
	return e.dimension
}

// ModelName returns the configured model name.
func (e *HTTPEncoder) ModelName() string {
	return e.model
}
