package upgrade

import "github.com/mxcd/npm-upgrade/internal/prompt"

const (
	choiceYes       = "yes"
	choiceNo        = "no"
	choiceSpecific  = "specific-version"
	choiceChangelog = "changelog"
	choiceHomepage  = "homepage"
	choiceIgnore    = "ignore"
	choiceFinish    = "finish"
)

type choiceList struct {
	choices []prompt.Choice
}

func (l *choiceList) add(label, value string) {
	l.choices = append(l.choices, prompt.Choice{Label: label, Value: value})
}

func (l *choiceList) addIf(guard bool, label, value string) {
	if guard {
		l.add(label, value)
	}
}

// decisionChoices returns the options offered for m and the index the
// cursor starts on.
func decisionChoices(m *Module, hasVersions bool) ([]prompt.Choice, int) {
	changelogAbsent := m.Changelog.State == Absent

	var l choiceList
	l.add("Yes", choiceYes)
	l.add("No", choiceNo)
	l.addIf(hasVersions, "Specific version", choiceSpecific)
	l.addIf(!changelogAbsent, "Show changelog", choiceChangelog)
	l.addIf(changelogAbsent && m.Homepage.State != Absent, "Open homepage", choiceHomepage)
	l.add("Ignore", choiceIgnore)
	l.add("Finish update process", choiceFinish)

	defaultIndex := 0
	if changelogAbsent && m.Homepage.State == Unresolved {
		defaultIndex = prompt.IndexOf(l.choices, choiceHomepage)
	}
	return l.choices, defaultIndex
}
