package words_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonokeeton/g4yp1g-bot/internal/domain/models"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/settings"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/words"
)

func TestFilter_SubstringMatch(t *testing.T) {
	store := settings.NewStore()
	filter := words.NewFilter(store)

	result := filter.Check(100, "buy spammy stuff")

	assert.True(t, result.IsBanned)
	assert.Equal(t, "spam", result.MatchedWord)
}

func TestFilter_CaseInsensitive(t *testing.T) {
	store := settings.NewStore()
	filter := words.NewFilter(store)

	result := filter.Check(100, "VIAGRA sale")

	assert.True(t, result.IsBanned)
	assert.Equal(t, "viagra", result.MatchedWord)
}

func TestFilter_NoMatch(t *testing.T) {
	store := settings.NewStore()
	filter := words.NewFilter(store)

	result := filter.Check(100, "hello there friends")

	assert.False(t, result.IsBanned)
	assert.Empty(t, result.MatchedWord)
}

func TestFilter_ListOrderTieBreak(t *testing.T) {
	store := settings.NewStore()
	filter := words.NewFilter(store)

	wordList := []string{"casino", "spam"}
	store.GetOrCreate(100).ApplyPatch(&models.GroupSettingsPatch{BannedWords: &wordList})

	// Оба слова встречаются, побеждает первое в списке.
	result := filter.Check(100, "spam casino")

	assert.True(t, result.IsBanned)
	assert.Equal(t, "casino", result.MatchedWord)
}

func TestFilter_PerGroupLists(t *testing.T) {
	store := settings.NewStore()
	filter := words.NewFilter(store)

	empty := []string{}
	store.GetOrCreate(100).ApplyPatch(&models.GroupSettingsPatch{BannedWords: &empty})

	assert.False(t, filter.Check(100, "spam").IsBanned)
	assert.True(t, filter.Check(200, "spam").IsBanned)
}

func TestFilter_LazilyCreatesGroup(t *testing.T) {
	store := settings.NewStore()
	filter := words.NewFilter(store)

	filter.Check(100, "hello")

	assert.Equal(t, 1, store.Count())
}
