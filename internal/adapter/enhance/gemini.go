package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	genai "google.golang.org/genai"

	"mlcatalog/internal/domain"
)

var ErrInvalidJSON = errors.New("enhance: invalid JSON from model")

const maxBodyChars = 4000

// GeminiEnhancer asks Gemini for structured documentation of an extracted
// function and merges the response into an EnhancedFunction. The structural
// facts (parameters, category, signature) always come from extraction; the
// model only supplies prose.
type GeminiEnhancer struct {
	cli   *genai.Client
	model string
}

func NewGeminiEnhancer(ctx context.Context, apiKeyEnv, model string) (*GeminiEnhancer, error) {
	if os.Getenv(apiKeyEnv) == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &GeminiEnhancer{cli: cli, model: model}, nil
}

func (e *GeminiEnhancer) ModelName() string {
	return e.model
}

// enhancementDoc is the JSON shape the model is asked to produce.
type enhancementDoc struct {
	Description string `json:"description"`
	Parameters  []struct {
		Name        string `json:"name"`
		Type        string `json:"type"`
		Units       string `json:"units"`
		Description string `json:"description"`
		Example     string `json:"example"`
	} `json:"parameters"`
	Returns []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"returns"`
	Example string `json:"example"`
}

func (e *GeminiEnhancer) Enhance(ctx context.Context, fn domain.FunctionRecord) (domain.EnhancedFunction, error) {
	prompt := buildPrompt(fn)

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		resp, err := e.cli.Models.GenerateContent(ctx, e.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
			&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
		)
		if err != nil {
			lastErr = err
		} else if txt, ok := candidateText(resp); !ok {
			lastErr = ErrInvalidJSON
		} else {
			var doc enhancementDoc
			if err := json.Unmarshal([]byte(txt), &doc); err != nil {
				lastErr = fmt.Errorf("%w: %v", ErrInvalidJSON, err)
			} else {
				return merge(fn, doc), nil
			}
		}
		if attempt < 2 {
			time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
		}
	}

	// Every record still gets stored. Fall back to help text as the
	// description and report the error so the caller can log it.
	return Fallback(fn), lastErr
}

// candidateText pulls the first text part out of a response. A candidate
// with nil Content happens when the model blocks the answer, so every
// level is checked before dereferencing.
func candidateText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 || c.Content.Parts[0] == nil {
		return "", false
	}
	return c.Content.Parts[0].Text, true
}

// Fallback builds an unenhanced record from extraction output alone.
func Fallback(fn domain.FunctionRecord) domain.EnhancedFunction {
	desc := firstHelpLine(fn.HelpText)
	if desc == "" {
		desc = fmt.Sprintf("MATLAB function %s", fn.Name)
	}
	return domain.EnhancedFunction{
		FunctionRecord: fn,
		Description:    desc,
		Enhanced:       false,
	}
}

func firstHelpLine(help string) string {
	for _, line := range strings.Split(help, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

func merge(fn domain.FunctionRecord, doc enhancementDoc) domain.EnhancedFunction {
	out := domain.EnhancedFunction{
		FunctionRecord: fn,
		Description:    doc.Description,
		ExampleCall:    doc.Example,
		Enhanced:       true,
	}

	// Only keep docs for parameters extraction actually found, so the
	// model cannot invent parameters.
	known := make(map[string]bool, len(fn.Parameters)+len(fn.NameValues))
	for _, p := range fn.Parameters {
		known[p.Name] = true
	}
	for _, p := range fn.NameValues {
		known[p.Name] = true
	}
	for _, p := range doc.Parameters {
		if !known[p.Name] {
			continue
		}
		out.ParamDocs = append(out.ParamDocs, domain.ParameterDoc{
			Name:        p.Name,
			Type:        p.Type,
			Units:       p.Units,
			Description: p.Description,
			Example:     p.Example,
		})
	}

	for _, r := range doc.Returns {
		out.ReturnDocs = append(out.ReturnDocs, domain.ParameterDoc{
			Name:        r.Name,
			Description: r.Description,
		})
	}

	return out
}

func buildPrompt(fn domain.FunctionRecord) string {
	var b strings.Builder

	b.WriteString("You are documenting a MATLAB function from a pulse sequence toolbox.\n")
	b.WriteString("Respond with JSON only, matching this shape:\n")
	b.WriteString(`{"description": "...", "parameters": [{"name": "...", "type": "...", "units": "...", "description": "...", "example": "..."}], "returns": [{"name": "...", "description": "..."}], "example": "..."}`)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Function: %s\n", fn.Name)
	fmt.Fprintf(&b, "Signature: %s\n", fn.RawSignature)
	if fn.CallingPattern != "" {
		fmt.Fprintf(&b, "Called as: %s\n", fn.CallingPattern)
	}

	if len(fn.Parameters) > 0 {
		b.WriteString("Parameters:\n")
		for _, p := range fn.Parameters {
			if p.Required {
				fmt.Fprintf(&b, "  - %s (required)\n", p.Name)
			} else {
				fmt.Fprintf(&b, "  - %s (optional, default: %s)\n", p.Name, p.DefaultValue)
			}
		}
	}
	if len(fn.NameValues) > 0 {
		b.WriteString("Name-value options:\n")
		for _, p := range fn.NameValues {
			fmt.Fprintf(&b, "  - %s (default: %s)\n", p.Name, p.DefaultValue)
		}
	}
	if len(fn.Outputs) > 0 {
		fmt.Fprintf(&b, "Outputs: %s\n", strings.Join(fn.Outputs, ", "))
	}

	if fn.HelpText != "" {
		b.WriteString("\nHelp text:\n")
		b.WriteString(fn.HelpText)
		b.WriteString("\n")
	}

	body := fn.Body
	if len(body) > maxBodyChars {
		body = body[:maxBodyChars] + "\n% ... truncated"
	}
	if body != "" {
		b.WriteString("\nSource:\n")
		b.WriteString(body)
	}

	return b.String()
}

// MockEnhancer returns deterministic documentation without network access.
type MockEnhancer struct {
	// Fail makes every Enhance call return the fallback record and an
	// error, for exercising degraded paths.
	Fail bool
}

func NewMockEnhancer() *MockEnhancer {
	return &MockEnhancer{}
}

func (e *MockEnhancer) ModelName() string {
	return "mock"
}

func (e *MockEnhancer) Enhance(_ context.Context, fn domain.FunctionRecord) (domain.EnhancedFunction, error) {
	if e.Fail {
		return Fallback(fn), errors.New("mock enhancer failure")
	}

	out := domain.EnhancedFunction{
		FunctionRecord: fn,
		Description:    fmt.Sprintf("Mock documentation for %s", fn.Name),
		Enhanced:       true,
	}
	for _, p := range fn.Parameters {
		out.ParamDocs = append(out.ParamDocs, domain.ParameterDoc{
			Name:        p.Name,
			Description: fmt.Sprintf("Mock doc for %s", p.Name),
		})
	}
	return out, nil
}
