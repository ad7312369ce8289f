package generator_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-relay/internal/infra/generator"
)

func TestNoOp_GenerateCopy(t *testing.T) {
	gen := generator.NewNoOp()

	draft, err := gen.GenerateCopy(context.Background(), generator.Brief{
		CampaignName: "Spring Launch",
		Objective:    "awareness",
		Brief:        "New plan for small teams.",
		Channel:      "slack",
	})

	require.NoError(t, err)
	assert.Equal(t, "Spring Launch", draft.Headline)
	assert.Equal(t, "New plan for small teams.", draft.Body)
}

func TestNoOp_GenerateCopy_FallsBackToObjective(t *testing.T) {
	gen := generator.NewNoOp()

	draft, err := gen.GenerateCopy(context.Background(), generator.Brief{
		CampaignName: "Spring Launch",
		Objective:    "awareness",
	})

	require.NoError(t, err)
	assert.Equal(t, "awareness", draft.Body)
}

func TestNoOp_GenerateCopy_TruncatesLongBody(t *testing.T) {
	gen := generator.NewNoOp()

	draft, err := gen.GenerateCopy(context.Background(), generator.Brief{
		CampaignName: "Spring Launch",
		Brief:        strings.Repeat("a", 2000),
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(draft.Body)), 500)
}

func TestNoOp_GenerateCopy_Errors(t *testing.T) {
	gen := generator.NewNoOp()

	t.Run("missing campaign name", func(t *testing.T) {
		_, err := gen.GenerateCopy(context.Background(), generator.Brief{Brief: "body"})
		assert.Error(t, err)
	})

	t.Run("missing body text", func(t *testing.T) {
		_, err := gen.GenerateCopy(context.Background(), generator.Brief{CampaignName: "x"})
		assert.Error(t, err)
	})
}

func TestNewClaude(t *testing.T) {
	gen := generator.NewClaude("test-api-key")
	require.NotNil(t, gen)
}

func TestNewOpenAI(t *testing.T) {
	config, err := generator.LoadOpenAIConfig()
	require.NoError(t, err)

	gen := generator.NewOpenAI("test-api-key", config)
	require.NotNil(t, gen)
}
