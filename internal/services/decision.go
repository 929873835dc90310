package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ronicTakouugang/stockz/internal/models"
)

var decisionValidator = validator.New()

// decisionPayload accepts the legacy "expectedReturn" key alongside
// "expectedReturnPct".
type decisionPayload struct {
	models.Decision
	ExpectedReturn *float64 `json:"expectedReturn"`
}

// ParseDecision decodes and validates a reasoning response. Markdown code
// fences around the JSON object are tolerated. Any failure wraps
// models.ErrInvalidDecisionPayload.
func ParseDecision(text string) (*models.Decision, error) {
	body := stripCodeFence(text)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", models.ErrInvalidDecisionPayload)
	}

	var payload decisionPayload
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidDecisionPayload, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after decision object", models.ErrInvalidDecisionPayload)
	}

	decision := payload.Decision
	if decision.ExpectedReturnPct == nil {
		decision.ExpectedReturnPct = payload.ExpectedReturn
	}
	decision.Signal = strings.ToUpper(strings.TrimSpace(decision.Signal))
	decision.RiskLevel = strings.TrimSpace(decision.RiskLevel)

	if err := decisionValidator.Struct(&decision); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidDecisionPayload, describeValidation(err))
	}
	return &decision, nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s out of range (%s %s)", fe.Field(), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag, e.g. ```json
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
