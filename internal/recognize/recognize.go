package recognize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/OfficiallySp/Audiology/internal/metadata"
)

// DefaultProviders selects which third-party catalogs the recognition
// service cross-references in its responses.
var DefaultProviders = []string{"apple_music", "spotify"}

// Result is the outcome of one recognition attempt. Recognition never
// fails past this type: transport, HTTP and parse errors all surface as
// a non-recognized result carrying the cause, so the pipeline always
// receives a well-formed value.
type Result struct {
	Recognized bool
	Track      metadata.Track
	Reason     string // why the track was not recognized
}

// Client talks to an AudD-style fingerprint recognition endpoint.
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
	providers  []string
}

// New creates a recognition client. The token is passed in explicitly:
// there is no ambient credential lookup. A nil provider list requests
// the default catalogs.
func New(token string, providers []string) *Client {
	if len(providers) == 0 {
		providers = DefaultProviders
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     "https://api.audd.io/",
		token:      token,
		providers:  providers,
	}
}

// Recognize submits a WAV-encoded sample and maps the service response
// into a Result. Exactly one attempt is made per call; there is no retry.
func (c *Client) Recognize(ctx context.Context, wavSample []byte) Result {
	body, contentType, err := c.encodeForm(wavSample)
	if err != nil {
		return requestFailed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, body)
	if err != nil {
		return requestFailed(err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return requestFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return requestFailed(fmt.Errorf("service returned %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return requestFailed(err)
	}
	return c.parseResponse(raw)
}

// encodeForm builds the multipart body: the credential, the provider
// selection, and the sample as a file part named "file" with a fixed
// "audio.wav" filename.
func (c *Client) encodeForm(wavSample []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("api_token", c.token); err != nil {
		return nil, "", fmt.Errorf("failed to encode api_token field: %w", err)
	}
	if err := w.WriteField("return", strings.Join(c.providers, ",")); err != nil {
		return nil, "", fmt.Errorf("failed to encode return field: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="audio.wav"`)
	header.Set("Content-Type", "audio/wav")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sample part: %w", err)
	}
	if _, err := part.Write(wavSample); err != nil {
		return nil, "", fmt.Errorf("failed to write sample part: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) parseResponse(raw []byte) Result {
	var resp apiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return requestFailed(fmt.Errorf("undecodable response: %w", err))
	}

	if resp.Status != "success" {
		if resp.Error != nil && resp.Error.Message != "" {
			return Result{Reason: resp.Error.Message}
		}
		return Result{Reason: fmt.Sprintf("service status %q", resp.Status)}
	}

	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return Result{Reason: "track not recognized"}
	}

	var res apiResult
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		return requestFailed(fmt.Errorf("undecodable result: %w", err))
	}

	track := metadata.Track{
		Artist:      res.Artist,
		Title:       res.Title,
		Album:       res.Album,
		ReleaseDate: res.ReleaseDate,
		Label:       res.Label,
		ArtworkURL:  c.artworkURL(resp.Result),
	}
	if track.IsZero() {
		return Result{Reason: "track not recognized"}
	}
	return Result{Recognized: true, Track: track}
}

// artworkURL walks the configured provider blocks in request order and
// returns the first album cover URL present, or "" when the chain is
// absent at any nesting level.
func (c *Client) artworkURL(result json.RawMessage) string {
	var blocks map[string]json.RawMessage
	if err := json.Unmarshal(result, &blocks); err != nil {
		return ""
	}

	for _, provider := range c.providers {
		raw, ok := blocks[provider]
		if !ok {
			continue
		}
		var block providerArt
		if err := json.Unmarshal(raw, &block); err != nil {
			continue
		}
		if imgs := block.Album.Images; len(imgs) > 0 && imgs[0].URL != "" {
			return imgs[0].URL
		}
	}
	return ""
}

func requestFailed(err error) Result {
	return Result{Reason: fmt.Sprintf("request failed: %v", err)}
}

// Recognition service response types

type apiResponse struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
	Error  *apiError       `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_message"`
}

type apiResult struct {
	Artist      string `json:"artist"`
	Title       string `json:"title"`
	Album       string `json:"album"`
	ReleaseDate string `json:"release_date"`
	Label       string `json:"label"`
}

type providerArt struct {
	Album struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}
