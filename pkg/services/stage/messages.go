package stage

import "strings"

var initialMessages = []string{
	"Hi, ***. This is Javis. Your growth strategist for 10X revenue.",
	"As all growth campaign shall be based on proper market research.",
	"To identify growth opportunities, now analyzing the global market landscape, competitors' intelligence.",
	"I am researching comprehensively for you using all professional data record on the internet.",
}

var secondaryMessages = []string{
	"Hi, ***. I am pulling data from professional paid database for your competitor's intelligence.",
	"Retrieving traffic volume metrics from RapidAPI nodes.",
	"Cross-referencing bounce rates with Meta Ads efficiency models.",
	"Finalizing growth opportunity vectors...",
}

// LoadingMessages returns the narration shown while a waiting stage runs,
// with the user's name substituted for the placeholder.
func LoadingMessages(s Stage, name string) []string {
	var src []string
	switch s {
	case WaitingInitial:
		src = initialMessages
	case WaitingSecondary:
		src = secondaryMessages
	default:
		return nil
	}

	out := make([]string, len(src))
	for i, m := range src {
		if name != "" {
			m = strings.ReplaceAll(m, "***", name)
		}
		out[i] = m
	}
	return out
}
