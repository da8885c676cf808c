package words

import (
	"strings"

	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/settings"
)

type Result struct {
	IsBanned    bool
	MatchedWord string
}

type Filter struct {
	store *settings.Store
}

func NewFilter(store *settings.Store) *Filter {
	return &Filter{
		store: store,
	}
}

// Check разбивает текст на токены по пробелам и ищет запрещённое слово
// как подстроку токена ("spammy" содержит "spam"). Слова проверяются в
// порядке списка, первое совпадение побеждает.
func (f *Filter) Check(groupID int64, text string) Result {
	group := f.store.GetOrCreate(groupID)
	tokens := strings.Fields(strings.ToLower(text))

	for _, word := range group.BannedWords() {
		for _, token := range tokens {
			if strings.Contains(token, word) {
				return Result{IsBanned: true, MatchedWord: word}
			}
		}
	}

	return Result{}
}
