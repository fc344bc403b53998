package bundle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const leafModel = `{"type":"decision_tree","nodes":[{"feature_idx":-1,"left_child":-1,"right_child":-1,"class_label":1,"is_leaf":true}]}`

func writeBundle(t *testing.T, dir, name, payload string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write bundle: %v", err)
	}
	return path
}

func TestLoadStructuredBundle(t *testing.T) {
	dir := t.TempDir()
	payload := `{"model":` + leafModel + `,
		"encoders":{"category":{"classes":["Food","Rent","Travel"]},"priority_flag":{"classes":["High","Low"]}},
		"feature_order":["income_x","income_y","expense_amount","category_enc","priority_enc","cutoff_rate","total_expenses","expense_ratio","risk_flag"]}`
	path := writeBundle(t, dir, "recommender_bundle.json", payload)

	b, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if b.Path != path {
		t.Fatalf("expected path %s, got %s", path, b.Path)
	}
	if !b.HasEncoders() {
		t.Fatal("expected encoders")
	}
	enc, ok := b.Encoder("category")
	if !ok {
		t.Fatal("missing category encoder")
	}
	code, err := enc.Transform("Travel")
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if code != 2 {
		t.Fatalf("expected code 2, got %d", code)
	}
}

func TestLoadCandidateFallback(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "recommendation_bundle.json", `{"model":`+leafModel+`}`)

	b, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if filepath.Base(b.Path) != "recommendation_bundle.json" {
		t.Fatalf("unexpected path %s", b.Path)
	}
	if b.HasEncoders() {
		t.Fatal("expected no encoders")
	}
	if len(b.FeatureOrder) != len(DefaultFeatureOrder) {
		t.Fatalf("expected default feature order, got %v", b.FeatureOrder)
	}
}

func TestLoadMissingListsAllPaths(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, name := range DefaultCandidates {
		if !strings.Contains(err.Error(), filepath.Join(dir, name)) {
			t.Fatalf("error does not mention %s: %v", name, err)
		}
	}
}

func TestLoadBareModelArtifact(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "recommender_bundle.json",
		`[{"feature_idx":-1,"left_child":-1,"right_child":-1,"class_label":0,"is_leaf":true}]`)

	b, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if b.HasEncoders() {
		t.Fatal("bare artifact must have no encoders")
	}
	label, err := b.Model.Predict(make([]float64, 9))
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected 0, got %d", label)
	}
}

func TestLoadRejectsUnknownFeatureColumn(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "recommender_bundle.json",
		`{"model":`+leafModel+`,"feature_order":["income_x","no_such_column"]}`)

	if _, err := Load(dir, nil); err == nil {
		t.Fatal("expected feature_order validation error")
	}
}

func TestRowFollowsFeatureOrder(t *testing.T) {
	b := &Bundle{FeatureOrder: []string{"risk_flag", "income_x", "expense_ratio"}}
	row, err := b.Row(map[string]float64{
		"income_x":      5000,
		"expense_ratio": 0.24,
		"risk_flag":     1,
	})
	if err != nil {
		t.Fatalf("row failed: %v", err)
	}
	want := []float64{1, 5000, 0.24}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("row[%d] = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestRowMissingColumn(t *testing.T) {
	b := &Bundle{FeatureOrder: []string{"income_x", "income_y"}}
	if _, err := b.Row(map[string]float64{"income_x": 1}); err == nil {
		t.Fatal("expected error for missing column")
	}
}
