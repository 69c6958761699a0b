package openai

import (
	"context"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	domainChat "github.com/AzielCF/az-chat/domains/chat"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
	"github.com/sirupsen/logrus"
)

// cognitiveServicesScope is the audience the SDK requests keyless tokens for.
const cognitiveServicesScope = "https://cognitiveservices.azure.com/.default"

type Config struct {
	// LocalEndpoint selects an OpenAI-compatible server that needs no key.
	LocalEndpoint string
	LocalAPIKey   string
	Endpoint      string
	APIKey        string
	APIVersion    string
	// Transport overrides the pooled default transport when set.
	Transport http.RoundTripper
}

// Client is the completion API client shared by every chat request.
// The caller is responsible for calling Close() at shutdown.
type Client struct {
	inner      openai.Client
	httpClient *http.Client
}

var _ domainChat.ICompletionClient = (*Client)(nil)

// NewClient picks the authentication mode: local endpoint, Azure with an
// API key, or Azure with tokens from cred.
func NewClient(cfg Config, cred azcore.TokenCredential) *Client {
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	httpClient := &http.Client{Transport: transport}
	opts := []option.RequestOption{option.WithHTTPClient(httpClient)}

	switch {
	case cfg.LocalEndpoint != "":
		logrus.Info("[OPENAI] Using local OpenAI-compatible API with no key")
		opts = append(opts, option.WithBaseURL(cfg.LocalEndpoint), option.WithAPIKey(cfg.LocalAPIKey))
	case cfg.APIKey != "":
		logrus.Info("[OPENAI] Using Azure OpenAI with key")
		opts = append(opts, azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion), azure.WithAPIKey(cfg.APIKey))
	default:
		logrus.Info("[OPENAI] Using Azure OpenAI with default credential")
		opts = append(opts, azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion), azure.WithTokenCredential(cred))
	}

	return &Client{
		inner:      openai.NewClient(opts...),
		httpClient: httpClient,
	}
}

// StreamChat starts a streaming completion. Azure takes the deployment name as the model.
func (c *Client) StreamChat(ctx context.Context, deployment string, messages []domainChat.Message) domainChat.ChunkStream {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(deployment),
		Messages: toParams(messages),
	}
	return &chunkStream{stream: c.inner.Chat.Completions.NewStreaming(ctx, params)}
}

// Close drops the pooled upstream connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func toParams(messages []domainChat.Message) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case domainChat.RoleSystem:
			params = append(params, openai.SystemMessage(m.Content))
		case domainChat.RoleAssistant:
			params = append(params, openai.AssistantMessage(m.Content))
		default:
			params = append(params, openai.UserMessage(m.Content))
		}
	}
	return params
}

// chunkStream exposes each chunk as the JSON the server sent.
type chunkStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func (s *chunkStream) Next() bool {
	return s.stream.Next()
}

func (s *chunkStream) Current() []byte {
	return []byte(s.stream.Current().RawJSON())
}

func (s *chunkStream) Err() error {
	return s.stream.Err()
}

func (s *chunkStream) Close() error {
	return s.stream.Close()
}
