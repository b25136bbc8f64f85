package quotes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	all := []Status{StatusDraft, StatusSent, StatusAccepted, StatusRefused}
	allowed := map[Status][]Status{
		StatusDraft: {StatusSent},
		StatusSent:  {StatusAccepted, StatusRefused},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusDraft.Terminal())
	assert.False(t, StatusSent.Terminal())
	assert.True(t, StatusAccepted.Terminal())
	assert.True(t, StatusRefused.Terminal())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusDraft.Valid())
	assert.True(t, StatusRefused.Valid())
	assert.False(t, Status("Archivé").Valid())
	assert.False(t, Status("").Valid())
}
