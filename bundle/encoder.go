package bundle

import (
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// ErrUnknownLabel reports a label outside an encoder's trained vocabulary.
var ErrUnknownLabel = errors.New("unknown label")

// LabelEncoder maps a categorical label to its index in the trained class
// list, mirroring the encoder layout the training process exports. Labels
// are NFC-normalized on both sides so canonically equivalent spellings hit
// the same class.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

func NewLabelEncoder(classes []string) *LabelEncoder {
	enc := &LabelEncoder{
		classes: append([]string(nil), classes...),
		index:   make(map[string]int, len(classes)),
	}
	for i, class := range classes {
		enc.index[norm.NFC.String(class)] = i
	}
	return enc
}

// Transform returns the stable non-negative code for label.
func (e *LabelEncoder) Transform(label string) (int, error) {
	code, ok := e.index[norm.NFC.String(label)]
	if !ok {
		return 0, fmt.Errorf("label %q: %w", label, ErrUnknownLabel)
	}
	return code, nil
}

// Classes returns the trained class list in code order.
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}
