package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"budgetrec/ml"
)

// DefaultCandidates are the artifact file names probed in order, matching
// what the training export writes.
var DefaultCandidates = []string{
	"recommender_bundle.json",
	"recommendation_bundle.json",
}

// DefaultFeatureOrder is the positional contract used when the artifact does
// not declare one.
var DefaultFeatureOrder = []string{
	"income_x", "income_y", "expense_amount",
	"category_enc", "priority_enc", "cutoff_rate",
	"total_expenses", "expense_ratio", "risk_flag",
}

// Bundle is the deployed unit of intelligence: model, optional categorical
// encoders and the column order the model was trained on. Loaded once at
// startup and read-only afterwards.
type Bundle struct {
	Model        ml.Model
	Encoders     map[string]*LabelEncoder
	FeatureOrder []string
	Path         string
}

func (b *Bundle) HasEncoders() bool {
	return len(b.Encoders) > 0
}

func (b *Bundle) Encoder(field string) (*LabelEncoder, bool) {
	enc, ok := b.Encoders[field]
	return enc, ok
}

// Row builds the feature vector in the bundle's declared column order.
func (b *Bundle) Row(values map[string]float64) ([]float64, error) {
	row := make([]float64, len(b.FeatureOrder))
	for i, col := range b.FeatureOrder {
		v, ok := values[col]
		if !ok {
			return nil, fmt.Errorf("feature %q missing from assembled row", col)
		}
		row[i] = v
	}
	return row, nil
}

type rawEncoder struct {
	Classes []string `json:"classes"`
}

type rawBundle struct {
	Model        json.RawMessage       `json:"model"`
	Encoders     map[string]rawEncoder `json:"encoders"`
	FeatureOrder []string              `json:"feature_order"`
}

// Load finds the first existing candidate file under dir and decodes it.
// A missing artifact is fatal to the caller; the error lists every path
// tried.
func Load(dir string, candidates []string) (*Bundle, error) {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}

	var path string
	tried := make([]string, 0, len(candidates))
	for _, name := range candidates {
		p := filepath.Join(dir, name)
		tried = append(tried, p)
		if _, err := os.Stat(p); err == nil {
			path = p
			break
		}
	}
	if path == "" {
		return nil, fmt.Errorf("model bundle not found, tried: %s", strings.Join(tried, ", "))
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle %s: %w", path, err)
	}
	return decode(payload, path)
}

// decode normalizes both artifact shapes (structured bundle or bare model)
// into one Bundle value, so nothing downstream branches on shape again.
func decode(payload []byte, path string) (*Bundle, error) {
	b := &Bundle{Path: path, FeatureOrder: DefaultFeatureOrder}

	var raw rawBundle
	if err := json.Unmarshal(payload, &raw); err == nil && raw.Model != nil {
		model, err := ml.Unmarshal(raw.Model)
		if err != nil {
			return nil, fmt.Errorf("bundle %s: %w", path, err)
		}
		b.Model = model
		if len(raw.Encoders) > 0 {
			b.Encoders = make(map[string]*LabelEncoder, len(raw.Encoders))
			for field, enc := range raw.Encoders {
				if len(enc.Classes) == 0 {
					return nil, fmt.Errorf("bundle %s: encoder %q has no classes", path, field)
				}
				b.Encoders[field] = NewLabelEncoder(enc.Classes)
			}
		}
		if len(raw.FeatureOrder) > 0 {
			b.FeatureOrder = raw.FeatureOrder
		}
	} else {
		model, err := ml.Unmarshal(payload)
		if err != nil {
			return nil, fmt.Errorf("bundle %s: %w", path, err)
		}
		b.Model = model
	}

	// A bad column contract should kill the process at load time, not the
	// first request.
	if err := validateFeatureOrder(b.FeatureOrder); err != nil {
		return nil, fmt.Errorf("bundle %s: %w", path, err)
	}
	return b, nil
}

func validateFeatureOrder(order []string) error {
	if len(order) == 0 {
		return fmt.Errorf("feature_order is empty")
	}
	known := make(map[string]bool, len(DefaultFeatureOrder))
	for _, col := range DefaultFeatureOrder {
		known[col] = true
	}
	seen := make(map[string]bool, len(order))
	for _, col := range order {
		if !known[col] {
			return fmt.Errorf("feature_order names unknown column %q", col)
		}
		if seen[col] {
			return fmt.Errorf("feature_order repeats column %q", col)
		}
		seen[col] = true
	}
	return nil
}
