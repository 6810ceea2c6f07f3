package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeType(t *testing.T) {
	for in, want := range map[string]string{
		"template": "template",
		"Template": "template",
		"TEMPLATE": "template",
		" add on ": "add on",
		"Add On":   "add on",
	} {
		got, err := NormalizeType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"gift", "addon", "", "templates"} {
		_, err := NormalizeType(in)
		assert.ErrorIs(t, err, ErrInvalidType, in)
	}
}

func TestApply(t *testing.T) {
	tmpl := Template{
		AgentCode:    "7",
		TemplateName: "morning run",
		TemplateType: TypeTemplate,
		Items: []Item{
			{ItemCode: "A1", ItemName: "Basundi", Quantity: 3, Price: 40},
			{ItemCode: "B2", ItemName: "Lassi", Quantity: 2, Price: 15},
			{ItemCode: "X9", ItemName: "Stale", Quantity: 0, Price: 99}, // skipped
		},
	}

	lines := Apply(tmpl)
	require.Len(t, lines, 2)
	assert.Equal(t, "A1", lines[0].ItemCode)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 40.0, lines[0].UnitPrice)
	assert.Equal(t, 120.0, lines[0].Total)
	assert.Equal(t, 30.0, lines[1].Total)
}
