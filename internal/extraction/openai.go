package extraction

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/flexprice/invoicegen/internal/config"
	"github.com/flexprice/invoicegen/internal/domain/invoice"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/sashabaranov/go-openai"
)

const systemPromptTemplate = `Extract the following fields from the user's invoice request and return them as a JSON object.
Do not include any markdown formatting. Return only the raw JSON object.

Fields to extract:
- clientName (string): the name of the client or company.
- serviceDescription (string): a brief description of the service provided.
- baseAmount (number): the cost of the service before tax.
- gstPercentage (number): the GST percentage, e.g. 18. Use 0 when the request names no tax.
- dueDate (string or null): the due date as YYYY-MM-DD if mentioned. Today is {{today}}.

Example input: "Create invoice for website development worth 45,000 for ABC Pvt Ltd with 18% GST."
Example output:
{"clientName": "ABC Pvt Ltd", "serviceDescription": "Website development", "baseAmount": 45000, "gstPercentage": 18, "dueDate": null}`

// OpenAIExtractor calls any OpenAI compatible chat completion endpoint
// (OpenRouter by default).
type OpenAIExtractor struct {
	client      *openai.Client
	cfg         config.ExtractionConfig
	logger      *logger.Logger
	now         func() time.Time
	credentials bool
}

func NewOpenAIExtractor(cfg *config.Configuration, log *logger.Logger) *OpenAIExtractor {
	clientCfg := openai.DefaultConfig(cfg.Extraction.APIKey)
	if cfg.Extraction.BaseURL != "" {
		clientCfg.BaseURL = cfg.Extraction.BaseURL
	}

	return &OpenAIExtractor{
		client:      openai.NewClientWithConfig(clientCfg),
		cfg:         cfg.Extraction,
		logger:      log,
		now:         time.Now,
		credentials: strings.TrimSpace(cfg.Extraction.APIKey) != "",
	}
}

var _ Extractor = (*OpenAIExtractor)(nil)

func (e *OpenAIExtractor) Extract(ctx context.Context, prompt string) (*invoice.ExtractedFields, error) {
	if !e.credentials {
		return nil, ierr.NewError("missing upstream credentials").
			WithHint("Invoice extraction is not configured").
			Mark(ierr.ErrExtraction)
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: strings.ReplaceAll(systemPromptTemplate, "{{today}}", e.now().UTC().Format(time.DateOnly)),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invoice extraction service is unavailable").
			WithReportableDetails(map[string]any{
				"model": e.cfg.Model,
			}).
			Mark(ierr.ErrExtraction)
	}

	if len(resp.Choices) == 0 {
		return nil, ierr.NewError("completion returned no choices").
			WithHint("Invoice extraction returned an empty response").
			Mark(ierr.ErrExtraction)
	}

	fields, err := ParseCompletion(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	e.logger.Infow("extracted invoice fields",
		"model", e.cfg.Model,
		"client_name", fields.ClientName,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return fields, nil
}

// completionFields accepts amounts written either as JSON numbers or strings
type completionFields struct {
	ClientName         *string      `json:"clientName"`
	ServiceDescription *string      `json:"serviceDescription"`
	BaseAmount         *numericText `json:"baseAmount"`
	GSTPercentage      *numericText `json:"gstPercentage"`
	DueDate            *string      `json:"dueDate"`
}

type numericText string

func (n *numericText) UnmarshalJSON(b []byte) error {
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*n = numericText(num.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*n = numericText(strings.TrimSpace(s))
	return nil
}

// ParseCompletion decodes the model output into ExtractedFields. Markdown code
// fences are stripped first since models add them despite instructions.
func ParseCompletion(content string) (*invoice.ExtractedFields, error) {
	cleaned := stripCodeFences(content)

	var raw completionFields
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invoice extraction returned malformed data").
			Mark(ierr.ErrExtraction)
	}

	var missing []string
	if blank(raw.ClientName) {
		missing = append(missing, "clientName")
	}
	if blank(raw.ServiceDescription) {
		missing = append(missing, "serviceDescription")
	}
	if raw.BaseAmount == nil {
		missing = append(missing, "baseAmount")
	}
	if raw.GSTPercentage == nil {
		missing = append(missing, "gstPercentage")
	}
	if len(missing) > 0 {
		return nil, ierr.NewErrorf("completion is missing required fields %v", missing).
			WithHint("Invoice extraction did not return every required field").
			WithReportableDetails(map[string]any{
				"missing": missing,
			}).
			Mark(ierr.ErrExtraction)
	}

	fields := &invoice.ExtractedFields{
		ClientName:         strings.TrimSpace(*raw.ClientName),
		ServiceDescription: strings.TrimSpace(*raw.ServiceDescription),
		BaseAmount:         string(*raw.BaseAmount),
		GSTPercentage:      string(*raw.GSTPercentage),
		Source:             invoice.ExtractionSourceAI,
	}
	if raw.DueDate != nil {
		fields.DueDate = strings.TrimSpace(*raw.DueDate)
	}
	return fields, nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
