package normalize

import (
	"regexp"
	"strings"
)

var negativePattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join([]string{
	`no`, `nope`, `nah`, `not`, `never`, `none`, `nothing`, `zero`, `false`, `wrong`,
	`haven't`, `havent`, `haven`, `hasn't`, `hasnt`, `hadn't`, `hadnt`,
	`didn't`, `didnt`, `don't`, `dont`, `doesn't`, `doesnt`,
	`isn't`, `isnt`, `wasn't`, `wasnt`, `aren't`, `arent`, `weren't`, `werent`,
	`can't`, `cant`, `cannot`, `won't`,
}, "|") + `)\b`)

var affirmativePattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join([]string{
	`yes`, `yeah`, `yep`, `ya`, `yup`, `correct`, `right`, `true`,
	`completed`, `complete`, `done`, `finished`, `i do`, `sure`,
	`of course`, `absolutely`, `definitely`,
}, "|") + `)\b`)

// Boolean classifies a yes/no answer. Any negative token makes the answer
// false even when affirmative tokens are also present. Answers matching
// neither vocabulary are false.
func Boolean(raw string) bool {
	text := strings.ReplaceAll(strings.TrimSpace(raw), "’", "'")
	if text == "" {
		return false
	}
	if negativePattern.MatchString(text) {
		return false
	}
	return affirmativePattern.MatchString(text)
}
