// Package recordjson validates serialized receipt records against a JSON
// schema before they cross into persistence.
package recordjson

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/deducto/receipt-scanner/constants"
)

// BuildReceiptRecordSchema returns the record schema (draft 2020-12 subset)
// as a generic map: decimal money fields travel as fixed-point strings,
// dates as YYYY-MM-DD, and category is constrained to the closed set.
func BuildReceiptRecordSchema() map[string]any {
	props := map[string]any{
		"id":          map[string]any{"type": "string", "minLength": 36, "maxLength": 36},
		"vendor_name": map[string]any{"type": "string", "minLength": 1},
		"total_amount": decimalProp(),
		"tax_amount":   decimalProp(),
		"transaction_date": map[string]any{
			"type":    "string",
			"pattern": `^\d{4}-\d{2}-\d{2}$`,
		},
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"description": map[string]any{"type": "string", "minLength": 1},
					"price":       decimalProp(),
				},
				"required": []string{"description", "price"},
			},
		},
		"category": map[string]any{
			"type": "string",
			"enum": constants.AsStringSlice(),
		},
		"confidence_score": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"raw_text":         map[string]any{"type": "string"},
		"extracted_at":     map[string]any{"type": "string"},
	}
	required := []string{"id", "vendor_name", "total_amount", "items", "category", "confidence_score", "raw_text", "extracted_at"}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func decimalProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^\d+(\.\d{1,2})?$`, // amounts are never negative
	}
}

// Validator compiles the schema once and checks serialized records.
type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	raw, err := json.Marshal(BuildReceiptRecordSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("receipt_record.json", strings.NewReader(string(raw))); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile("receipt_record.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks one serialized record. A nil return means the document is
// safe to hand to the persistence layer.
func (v *Validator) Validate(doc []byte) error {
	var instance any
	if err := json.Unmarshal(doc, &instance); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if err := v.schema.Validate(instance); err != nil {
		return fmt.Errorf("record schema: %w", err)
	}
	return nil
}
