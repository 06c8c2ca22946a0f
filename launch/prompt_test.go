package launch

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataclassification/config"
)

func TestPrompterAsk(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  maria \n\n"), &out)

	answer, err := p.Ask("User", "")
	require.NoError(t, err)
	assert.Equal(t, "maria", answer)

	answer, err = p.Ask("User", "joao")
	require.NoError(t, err)
	assert.Equal(t, "joao", answer)
	assert.Contains(t, out.String(), "User [joao]: ")
}

func TestPrompterAskDateRetries(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("01/07/2024\n2024-07-01\n"), &out)

	answer, err := p.AskDate("Start", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01", answer)
	assert.Contains(t, out.String(), `invalid date "01/07/2024"`)
}

func TestResolvePromptsForMissingValues(t *testing.T) {
	var out bytes.Buffer
	opts := Options{
		To:  "2024-07-31",
		In:  strings.NewReader("SEBRAE\\maria\n2024-07-01\n"),
		Out: &out,
	}

	cfg := config.Default()
	dates, err := opts.resolve(cfg.Query)
	require.NoError(t, err)

	assert.Equal(t, `SEBRAE\maria`, opts.UserName)
	assert.Equal(t, "2024-07-01", opts.From)
	assert.Equal(t, "2024-07-31", opts.To)
	assert.Equal(t, "2024-07-01", dates.From.Format("2006-01-02"))
	assert.Equal(t, "America/Sao_Paulo", dates.From.Location().String())
	assert.NotContains(t, out.String(), "End date")
}

func TestResolveWithoutPromptUsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Query.From = "2024-07-01"
	cfg.Query.To = "2024-09-13"
	cfg.Query.UserName = `SEBRAE\joao`

	opts := Options{NoPrompt: true, From: "2024-08-01"}
	_, err := opts.resolve(cfg.Query)
	require.NoError(t, err)

	assert.Equal(t, `SEBRAE\joao`, opts.UserName)
	assert.Equal(t, "2024-08-01", opts.From)
	assert.Equal(t, "2024-09-13", opts.To)
}

func TestResolveRejectsReversedRange(t *testing.T) {
	opts := Options{NoPrompt: true, From: "2024-09-13", To: "2024-07-01"}
	_, err := opts.resolve(config.Default().Query)
	assert.Error(t, err)
}
