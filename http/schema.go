package http

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// PredictRequest 预测请求体
// Optional fields are pointers so absence is distinguishable from zero.
type PredictRequest struct {
	IncomeX       float64 `json:"income_x"`
	IncomeY       float64 `json:"income_y"`
	ExpenseAmount float64 `json:"expense_amount"`
	Category      *string `json:"category,omitempty"`
	PriorityFlag  *string `json:"priority_flag,omitempty"`
	Currency      *string `json:"currency,omitempty"`
	CategoryEnc   *int    `json:"category_enc,omitempty"`
	PriorityEnc   *int    `json:"priority_enc,omitempty"`
	CutoffRate    float64 `json:"cutoff_rate"`
	TotalExpenses float64 `json:"total_expenses"`
	ExpenseRatio  float64 `json:"expense_ratio"`
	RiskFlag      int     `json:"risk_flag"`
}

const predictSchemaDoc = `{
	"type": "object",
	"required": [
		"income_x", "income_y", "expense_amount",
		"cutoff_rate", "total_expenses", "expense_ratio", "risk_flag"
	],
	"properties": {
		"income_x":       {"type": "number"},
		"income_y":       {"type": "number"},
		"expense_amount": {"type": "number"},
		"category":       {"type": "string"},
		"priority_flag":  {"type": "string"},
		"currency":       {"type": "string"},
		"category_enc":   {"type": "integer"},
		"priority_enc":   {"type": "integer"},
		"cutoff_rate":    {"type": "number"},
		"total_expenses": {"type": "number"},
		"expense_ratio":  {"type": "number"},
		"risk_flag":      {"type": "integer"}
	}
}`

// 编译一次，所有请求共用
var predictSchema = jsonschema.MustCompileString("predict.json", predictSchemaDoc)

// decodePredictRequest 校验并解析预测请求
func decodePredictRequest(r io.Reader) (*PredictRequest, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := predictSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	var req PredictRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return &req, nil
}
