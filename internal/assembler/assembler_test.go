package assembler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundchat/internal/domain"
)

var profile = domain.UserProfile{Name: "Layla", Age: 29, Gender: "female", Education: "university"}

func turns(n int) []domain.Turn {
	out := make([]domain.Turn, n)
	for i := range out {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		out[i] = domain.Turn{Role: role, Content: fmt.Sprintf("turn %d", i)}
	}
	return out
}

func TestReferencesAreVerbatim(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	result := domain.RetrievalResult{Texts: []string{"Anxiety is treated with CBT."}, Strategy: domain.StrategySemantic}

	p, err := a.Assemble(result, profile, []domain.Turn{{Role: domain.RoleUser, Content: "How is anxiety treated?"}})
	require.NoError(t, err)

	assert.Equal(t, "Anxiety is treated with CBT.", p.References)
	assert.Contains(t, p.System, "Anxiety is treated with CBT.")
	assert.Contains(t, p.System, "Layla")
	assert.Contains(t, p.System, "29")
	assert.Contains(t, p.System, "university")
	assert.Contains(t, p.System, "Answer only from the information in the references")

	msgs := p.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleSystem, msgs[0].Role)
	assert.Equal(t, "How is anxiety treated?", msgs[1].Content)
}

func TestWindowKeepsLastTurnsInOrder(t *testing.T) {
	a, err := New(WithWindow(5))
	require.NoError(t, err)
	history := turns(12)

	p, err := a.Assemble(domain.RetrievalResult{Texts: []string{"ref"}}, profile, history)
	require.NoError(t, err)

	require.Len(t, p.Window, 5)
	assert.Equal(t, history[7:], p.Window)
	assert.Len(t, history, 12)
	assert.Equal(t, "turn 0", history[0].Content)
}

func TestWindowShortHistory(t *testing.T) {
	history := turns(3)
	assert.Equal(t, history, Window(history, 5))
	assert.Empty(t, Window(nil, 5))
}

func TestWindowIsACopy(t *testing.T) {
	history := turns(6)
	w := Window(history, 2)
	w[0].Content = "changed"
	assert.Equal(t, "turn 4", history[4].Content)
}

func TestEmptyReferencesUseSentinel(t *testing.T) {
	a, err := New()
	require.NoError(t, err)

	p, err := a.Assemble(domain.RetrievalResult{}, profile, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.NoReferencesText, p.References)
	assert.Contains(t, p.System, domain.NoReferencesText)
}

func TestCustomTemplate(t *testing.T) {
	a, err := New(WithTemplate("Hi {{.Name}}: {{.References}}"))
	require.NoError(t, err)

	p, err := a.Assemble(domain.RetrievalResult{Texts: []string{"a", "b"}}, profile, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hi Layla: a\nb", p.System)
}

func TestInvalidOptions(t *testing.T) {
	_, err := New(WithWindow(0))
	assert.Error(t, err)
	_, err = New(WithTemplate("{{.Name"))
	assert.Error(t, err)
}
