package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumosguard/internal/domain/models"
)

func TestFeatureVector_FixedWidth(t *testing.T) {
	// Every field marshals unconditionally: a zero vector and a populated
	// one are both exactly FeatureVectorWidth fields wide.
	for _, fv := range []models.FeatureVector{
		{},
		{MessageLength: 42, HasURL: 1, AIConfidence: 90, TextEntropy: 3.2, AIEmotionTriggers: "fear"},
	} {
		data, err := json.Marshal(fv)
		require.NoError(t, err)

		fields := make(map[string]any)
		require.NoError(t, json.Unmarshal(data, &fields))
		assert.Len(t, fields, models.FeatureVectorWidth)
	}
}
