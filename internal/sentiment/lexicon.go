package sentiment

// lexicon holds word valences on a -5..+5 scale (AFINN-style).
var lexicon = map[string]float64{
	// positive
	"amazing":     4,
	"appreciate":  2,
	"appreciated": 2,
	"awesome":     4,
	"beautiful":   3,
	"best":        3,
	"brilliant":   4,
	"delighted":   3,
	"easy":        1,
	"effective":   2,
	"excellent":   3,
	"excited":     3,
	"exciting":    3,
	"fantastic":   4,
	"fast":        1,
	"fine":        1,
	"glad":        3,
	"good":        3,
	"grateful":    3,
	"great":       3,
	"happy":       3,
	"helpful":     2,
	"impressed":   3,
	"impressive":  3,
	"improved":    2,
	"love":        3,
	"loved":       3,
	"lovely":      3,
	"nice":        3,
	"outstanding": 5,
	"perfect":     3,
	"pleased":     3,
	"pleasure":    3,
	"positive":    2,
	"recommend":   2,
	"reliable":    2,
	"resolved":    2,
	"satisfied":   2,
	"smooth":      1,
	"solved":      1,
	"success":     2,
	"successful":  3,
	"superb":      5,
	"terrific":    4,
	"thank":       2,
	"thanks":      2,
	"thrilled":    5,
	"welcome":     2,
	"wonderful":   4,
	"works":       1,
	"worth":       2,

	// negative
	"angry":         -3,
	"annoyed":       -2,
	"annoying":      -2,
	"awful":         -3,
	"bad":           -3,
	"broken":        -1,
	"bug":           -2,
	"cancel":        -1,
	"complaint":     -2,
	"confused":      -2,
	"crash":         -2,
	"crashed":       -2,
	"delay":         -1,
	"delayed":       -1,
	"disappointed":  -2,
	"disappointing": -2,
	"disaster":      -2,
	"dissatisfied":  -2,
	"error":         -2,
	"fail":          -2,
	"failed":        -2,
	"failure":       -2,
	"frustrated":    -2,
	"frustrating":   -2,
	"hate":          -3,
	"horrible":      -3,
	"issue":         -1,
	"late":          -1,
	"poor":          -2,
	"problem":       -2,
	"refund":        -1,
	"rude":          -2,
	"sad":           -2,
	"slow":          -1,
	"sorry":         -1,
	"terrible":      -3,
	"unacceptable":  -3,
	"unhappy":       -2,
	"upset":         -2,
	"useless":       -2,
	"waste":         -1,
	"worse":         -3,
	"worst":         -3,
	"wrong":         -2,
}

// boosters scale the magnitude of the next valence word.
var boosters = map[string]float64{
	"absolutely": boosterIncrement,
	"completely": boosterIncrement,
	"extremely":  boosterIncrement,
	"highly":     boosterIncrement,
	"incredibly": boosterIncrement,
	"really":     boosterIncrement,
	"so":         boosterIncrement,
	"totally":    boosterIncrement,
	"very":       boosterIncrement,
	"barely":     -boosterIncrement,
	"kinda":      -boosterIncrement,
	"slightly":   -boosterIncrement,
	"somewhat":   -boosterIncrement,
}

// negators flip the valence of the words following them.
var negators = map[string]struct{}{
	"aren't":  {},
	"can't":   {},
	"cannot":  {},
	"didn't":  {},
	"doesn't": {},
	"don't":   {},
	"dont":    {},
	"hardly":  {},
	"isn't":   {},
	"neither": {},
	"never":   {},
	"no":      {},
	"nor":     {},
	"not":     {},
	"nothing": {},
	"wasn't":  {},
	"won't":   {},
	"without": {},
}
