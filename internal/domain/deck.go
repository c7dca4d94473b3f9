package domain

import "fmt"

// Deck is a parsed question file destined for one level.
type Deck struct {
	Source       string
	LevelNumber  int
	Title        string
	PassingScore int
	Questions    []*Question
}

// DeckTitle is the default level title. Levels 1 to 5 map to JLPT N5 to N1.
func DeckTitle(levelNumber int) string {
	if levelNumber >= 1 && levelNumber <= 5 {
		return fmt.Sprintf("JLPT N%d Vocabulary", 6-levelNumber)
	}
	return fmt.Sprintf("Level %d", levelNumber)
}
