package llm

import (
	"encoding/json"
	"fmt"
)

const extractionSystemPrompt = "You are a legal document extraction expert. You return only valid JSON."

const eligibilitySystemPrompt = "You are an expert on California expungement law. You return only valid JSON."

// BuildExtractionPrompt constructs the field extraction prompt for one document
func BuildExtractionPrompt(req ExtractRequest) string {
	return fmt.Sprintf(`Extract **only** these fields from the %s document below.
Return **only** valid JSON, no explanations, no markdown.

Use null for missing values. Dates must be in YYYY-MM-DD format.

Required fields:
- city_or_county (string)
- case_number (string)
- name (string)
- date_to_appear (string, YYYY-MM-DD)

Optional fields:
- violations_charged_with (array of strings)
- sentencing (string or null)
- fine (number or null)
- further_instruction (string or null)
- report_number (string or null)
- date_of_incident (string, YYYY-MM-DD or null)
- officer (string or null)
- location_of_occurrence (string or null)

Document: %s

Text:
%s

Return ONLY the JSON object.`, req.Source, req.Filename, req.Text)
}

// BuildEligibilityPrompt constructs the eligibility prompt from the merged
// case record and the intake answers
func BuildEligibilityPrompt(req AssessRequest) (string, error) {
	caseJSON, err := json.MarshalIndent(req.Case, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal case record: %w", err)
	}
	answersJSON, err := json.MarshalIndent(req.Answers, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal answers: %w", err)
	}

	return fmt.Sprintf(`Analyze the user's eligibility for expungement.

CASE RECORD (merged from court documents):
%s

INTAKE ANSWERS:
%s

Return ONLY a JSON object with this structure:

{
    "eligible": true or false,
    "confidence": numeric score from 0-100,
    "key_findings": [
        {"title": "Conviction Type Eligible" or "Conviction Type Not Eligible", "description": "..."},
        {"title": "Waiting Period Met" or "Waiting Period Not Met", "description": "..."},
        {"title": "No Disqualifying Factors" or "Disqualifying Factors", "description": "..."}
    ],
    "next_steps": ["step 1", "step 2", "step 3"]
}

RULES:
- If eligible, next_steps are filing steps (download report, complete forms, file with court)
- If not eligible, next_steps are the pathway to become eligible
- confidence: 90-100 high, 60-89 medium, 0-59 low`, caseJSON, answersJSON), nil
}
