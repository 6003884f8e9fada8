package bag

import (
	"fmt"

	"github.com/kmelnikov/scrabbled/game"
)

// englishDistribution is the standard English tile distribution,
// without blanks.
var englishDistribution = map[game.Letter]int{
	'a': 9, 'b': 2, 'c': 2, 'd': 4, 'e': 12,
	'f': 2, 'g': 3, 'h': 2, 'i': 9, 'j': 1,
	'k': 1, 'l': 4, 'm': 2, 'n': 6, 'o': 8,
	'p': 2, 'q': 1, 'r': 6, 's': 4, 't': 6,
	'u': 4, 'v': 2, 'w': 2, 'x': 1, 'y': 2,
	'z': 1,
}

var distributions = map[string]map[game.Letter]int{
	"en": englishDistribution,
}

// Distribution returns the letter distribution for the language code.
func Distribution(lang string) (map[game.Letter]int, error) {
	d, ok := distributions[lang]
	if !ok {
		return nil, fmt.Errorf("no letter distribution for language %q", lang)
	}
	return d, nil
}
