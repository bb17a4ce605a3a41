package negex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annotate(t *testing.T, text string, terms ...string) []Mention {
	t.Helper()
	return New(ClinicalTermset()).Annotate(text, terms)
}

func TestPrecedingNegation(t *testing.T) {
	ms := annotate(t, "No obvious acute fracture or stress fracture.", "fracture", "stress fracture")
	require.Len(t, ms, 2)
	assert.Equal(t, "fracture", ms[0].Term)
	assert.Equal(t, "stress fracture", ms[1].Term)
	assert.True(t, ms[0].Negated)
	assert.True(t, ms[1].Negated)
	assert.Equal(t, "no obvious", ms[0].Trigger)
}

func TestAffirmedMention(t *testing.T) {
	ms := annotate(t, "Stress fracture of the distal tibia.", "stress fracture")
	require.Len(t, ms, 1)
	assert.False(t, ms[0].Negated)
	assert.Empty(t, ms[0].Trigger)
}

func TestFollowingNegation(t *testing.T) {
	ms := annotate(t, "Osteomyelitis is ruled out.", "osteomyelitis")
	require.Len(t, ms, 1)
	assert.True(t, ms[0].Negated)
	assert.Equal(t, "is ruled out", ms[0].Trigger)
}

func TestTerminationClosesScope(t *testing.T) {
	ms := annotate(t, "No effusion but there is a small osteochondral defect.", "effusion", "osteochondral defect")
	require.Len(t, ms, 2)
	assert.True(t, ms[0].Negated)
	assert.False(t, ms[1].Negated)
}

func TestPseudoNegationIsNotATrigger(t *testing.T) {
	ms := annotate(t, "No change in the known enchondroma.", "enchondroma")
	require.Len(t, ms, 1)
	assert.False(t, ms[0].Negated)
}

func TestScopeIsSentenceBounded(t *testing.T) {
	ms := annotate(t, "No effusion. Small joint body in the knee.", "effusion", "joint body")
	require.Len(t, ms, 2)
	assert.True(t, ms[0].Negated)
	assert.False(t, ms[1].Negated)
	assert.NotEqual(t, ms[0].Sentence, ms[1].Sentence)
}

func TestCaseInsensitiveWholeWord(t *testing.T) {
	ms := annotate(t, "NO FRACTURES. Fracture healing.", "fracture")
	require.Len(t, ms, 1, "fractures must not match fracture")
	assert.Equal(t, "fracture", ms[0].Term)
	assert.False(t, ms[0].Negated)
}

func TestLongestMentionWins(t *testing.T) {
	ms := annotate(t, "Healing stress fracture.", "fracture", "stress fracture")
	require.Len(t, ms, 1)
	assert.Equal(t, "stress fracture", ms[0].Term)
}

func TestNoMentions(t *testing.T) {
	assert.Nil(t, annotate(t, "Normal study.", "fracture"))
	assert.Nil(t, annotate(t, "", "fracture"))
}

func TestNegatedSpan(t *testing.T) {
	d := New(ClinicalTermset())
	s := "There is no fracture."
	assert.True(t, d.Negated(s, 12, 20))
	s = "There is a fracture."
	assert.False(t, d.Negated(s, 11, 19))
}

func TestAddAndRemovePatterns(t *testing.T) {
	ts := ClinicalTermset()
	ts.RemovePatterns(Termset{PrecedingNegations: []string{"No", "no obvious"}})
	ms := New(ts).Annotate("No obvious effusion.", []string{"effusion"})
	require.Len(t, ms, 1)
	assert.False(t, ms[0].Negated)

	ts.AddPatterns(Termset{PrecedingNegations: []string{"no obvious", "no obvious"}})
	assert.Equal(t, 1, count(ts.PrecedingNegations, "no obvious"))
	ms = New(ts).Annotate("No obvious effusion.", []string{"effusion"})
	require.Len(t, ms, 1)
	assert.True(t, ms[0].Negated)
}

func TestEmptyTermset(t *testing.T) {
	ms := New(Termset{}).Annotate("No fracture.", []string{"fracture"})
	require.Len(t, ms, 1)
	assert.False(t, ms[0].Negated)
}

func count(list []string, s string) int {
	n := 0
	for _, v := range list {
		if v == s {
			n++
		}
	}
	return n
}
