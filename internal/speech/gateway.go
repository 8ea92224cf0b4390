// internal/speech/gateway.go
package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	speechapi "google.golang.org/api/speech/v1"
	"google.golang.org/api/texttospeech/v1"

	"scheme-assistant/internal/common/metrics"
)

var (
	ErrNoSpeechRecognised = errors.New("NO_SPEECH_RECOGNISED")
	ErrSpeechFailed       = errors.New("SPEECH_FAILED")
)

// GatewayConfig points the cloud speech clients at an endpoint. An empty
// BaseURL keeps the public Google endpoints.
type GatewayConfig struct {
	BaseURL      string
	APIKey       string
	LanguageCode string
	VoiceName    string
	SampleRate   int
	Timeout      time.Duration
}

// HTTPGateway implements both SpeechToText and TextToSpeech.
type HTTPGateway struct {
	config GatewayConfig
	stt    *speechapi.Service
	tts    *texttospeech.Service
}

// NewHTTPGateway builds the recognition and synthesis clients. A non-nil
// client replaces the transport; the API key then travels as a header on it.
func NewHTTPGateway(ctx context.Context, cfg GatewayConfig, client *http.Client) (*HTTPGateway, error) {
	var opts []option.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	if client != nil {
		opts = append(opts, option.WithHTTPClient(withAPIKey(client, cfg.APIKey)))
	} else if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	stt, err := speechapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	tts, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create text-to-speech client: %w", err)
	}
	return &HTTPGateway{config: cfg, stt: stt, tts: tts}, nil
}

func (g *HTTPGateway) Transcribe(ctx context.Context, audio []byte) (Transcript, error) {
	req := &speechapi.RecognizeRequest{
		Config: &speechapi.RecognitionConfig{
			Encoding:                   "LINEAR16",
			SampleRateHertz:            int64(g.config.SampleRate),
			LanguageCode:               g.config.LanguageCode,
			AlternativeLanguageCodes:   []string{"en-IN"},
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechapi.RecognitionAudio{Content: base64.StdEncoding.EncodeToString(audio)},
	}

	resp, err := g.stt.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		metrics.SpeechRequests.WithLabelValues("transcribe", "error").Inc()
		return Transcript{}, wrapAPIError(err)
	}

	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		alt := r.Alternatives[0]
		if text := strings.TrimSpace(alt.Transcript); text != "" {
			metrics.SpeechRequests.WithLabelValues("transcribe", "ok").Inc()
			return Transcript{Text: text, Confidence: alt.Confidence}, nil
		}
	}
	metrics.SpeechRequests.WithLabelValues("transcribe", "empty").Inc()
	return Transcript{}, ErrNoSpeechRecognised
}

func (g *HTTPGateway) Synthesize(ctx context.Context, text string) ([]byte, error) {
	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: g.config.LanguageCode,
			Name:         g.config.VoiceName,
		},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding:   "LINEAR16",
			SampleRateHertz: int64(g.config.SampleRate),
			SpeakingRate:    1.0,
		},
	}

	resp, err := g.tts.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		metrics.SpeechRequests.WithLabelValues("synthesize", "error").Inc()
		return nil, wrapAPIError(err)
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil || len(audio) == 0 {
		metrics.SpeechRequests.WithLabelValues("synthesize", "error").Inc()
		return nil, fmt.Errorf("%w: empty or invalid audio content", ErrSpeechFailed)
	}
	metrics.SpeechRequests.WithLabelValues("synthesize", "ok").Inc()
	return audio, nil
}

func wrapAPIError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: status %d", ErrSpeechFailed, apiErr.Code)
	}
	return fmt.Errorf("%w: %v", ErrSpeechFailed, err)
}

// withAPIKey copies client with a transport that sets the API key header.
func withAPIKey(client *http.Client, key string) *http.Client {
	if key == "" {
		return client
	}
	next := client.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	c := *client
	c.Transport = &apiKeyTransport{key: key, next: next}
	return &c
}

type apiKeyTransport struct {
	key  string
	next http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-Goog-Api-Key", t.key)
	return t.next.RoundTrip(req)
}
