package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundchat/internal/domain"
	"groundchat/internal/gateway"
	"groundchat/internal/service"
	"groundchat/internal/session"
)

type fakeChat struct {
	err     error
	resends int
}

func (f *fakeChat) Reply(_ context.Context, sess *session.Session, input string) (service.Answer, error) {
	sess.Append(domain.Turn{Role: domain.RoleUser, Content: input})
	return f.answer(sess)
}

func (f *fakeChat) Resend(_ context.Context, sess *session.Session) (service.Answer, error) {
	f.resends++
	return f.answer(sess)
}

func (f *fakeChat) answer(sess *session.Session) (service.Answer, error) {
	if f.err != nil {
		return service.Answer{}, f.err
	}
	sess.Append(domain.Turn{Role: domain.RoleAssistant, Content: "CBT is commonly used."})
	return service.Answer{
		Text:      "CBT is commonly used.",
		Retrieval: domain.RetrievalResult{Strategy: domain.StrategySemantic},
	}, nil
}

func newModel(f *fakeChat) (Model, *session.Session) {
	sess := session.New(domain.UserProfile{Name: "Sara"})
	m := New(context.Background(), f, sess)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model), sess
}

// drain runs cmd and feeds the turn result back into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	msgs := []tea.Msg{cmd()}
	if batch, ok := msgs[0].(tea.BatchMsg); ok {
		msgs = msgs[:0]
		for _, c := range batch {
			if c != nil {
				msgs = append(msgs, c())
			}
		}
	}
	for _, msg := range msgs {
		if am, ok := msg.(answerMsg); ok {
			next, _ := m.Update(am)
			return next.(Model)
		}
	}
	t.Fatal("no answer message produced")
	return m
}

func TestEnterRunsTurn(t *testing.T) {
	m, sess := newModel(&fakeChat{})
	m.input.SetValue("How is anxiety treated?")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	assert.True(t, m.busy)
	assert.Contains(t, m.View(), "Reviewing the references...")

	m = drain(t, m, cmd)
	assert.False(t, m.busy)
	assert.Len(t, sess.Turns(), 2)
	assert.Contains(t, m.View(), "CBT is commonly used.")
	assert.Contains(t, m.View(), "semantic")
}

func TestFailureShowsNoticeAndResend(t *testing.T) {
	f := &fakeChat{err: &gateway.Error{Kind: gateway.KindTransient, Err: context.DeadlineExceeded}}
	m, sess := newModel(f)
	m.input.SetValue("How is anxiety treated?")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = drain(t, next.(Model), cmd)
	assert.True(t, m.failed)
	assert.Contains(t, m.View(), "ctrl+r")
	assert.Len(t, sess.Turns(), 1)

	f.err = nil
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = drain(t, next.(Model), cmd)
	assert.Equal(t, 1, f.resends)
	assert.False(t, m.failed)
	assert.Len(t, sess.Turns(), 2)
}

func TestEmptyInputIsIgnored(t *testing.T) {
	m, _ := newModel(&fakeChat{})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, next.(Model).busy)
}

func TestResendWithoutPendingIsIgnored(t *testing.T) {
	f := &fakeChat{}
	m, _ := newModel(f)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Nil(t, cmd)
	assert.Zero(t, f.resends)
}

func TestMissingKeyNotice(t *testing.T) {
	err := &gateway.Error{Kind: gateway.KindCredential, Err: domain.ErrMissingCredential}
	assert.Contains(t, failureNotice(err), "no API key")
}
