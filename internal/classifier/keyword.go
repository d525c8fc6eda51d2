package classifier

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"fleet-dispatch/internal/domain/command"
)

// KeywordClassifier is a deterministic rule-based classifier. It understands
// the narrow dispatcher vocabulary well enough to run the service without the
// external model: verb keywords pick the action, regexes pull out the trip,
// path, and route references and the action parameters.
type KeywordClassifier struct{}

// NewKeywordClassifier constructs a new KeywordClassifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var (
	tripRefRe  = regexp.MustCompile(`(?i)\btrip\s*#?\s*(\d+)`)
	pathRefRe  = regexp.MustCompile(`(?i)\bpath[\s-]*#?\s*(\d+)`)
	routeRefRe = regexp.MustCompile(`(?i)\broute[\s-]*#?\s*(\d+)`)

	// registration plates like MH-12-3456 or KA01AB1234: letter/digit groups
	// joined by optional separators, at least two groups
	registrationRe = regexp.MustCompile(`\b[A-Z]{2,3}[- ]?\d{1,2}(?:[- ]?[A-Z]{1,2})?[- ]?\d{3,4}\b`)

	driverNameRe = regexp.MustCompile(`(?i)\bdriver\s+(?:to\s+)?([A-Za-z]+(?:\s+[A-Za-z]+)?)`)
	reasonRe     = regexp.MustCompile(`(?i)\b(?:because|due to|reason:?)\s+(.+)$`)
)

// Classify maps free text to an intent record without any network call.
func (c *KeywordClassifier) Classify(_ context.Context, text string) (command.IntentRecord, error) {
	lower := strings.ToLower(text)

	rec := command.IntentRecord{
		TargetTripID:  matchID(tripRefRe, text),
		TargetPathID:  matchID(pathRefRe, text),
		TargetRouteID: matchID(routeRefRe, text),
		Parameters:    map[string]string{},
	}

	switch {
	case strings.Contains(lower, "cancel"):
		rec.Action = command.ActionCancelTrip.String()
		if m := reasonRe.FindStringSubmatch(text); m != nil {
			rec.Parameters["reason"] = strings.TrimSpace(m[1])
		}

	case (strings.Contains(lower, "remove") || strings.Contains(lower, "unassign")) &&
		strings.Contains(lower, "vehicle"):
		rec.Action = command.ActionRemoveVehicle.String()

	// intents are single-action: a combined "assign vehicle X and driver Y"
	// classifies as the driver change and the vehicle clause is dropped
	case strings.Contains(lower, "driver") &&
		(strings.Contains(lower, "change") || strings.Contains(lower, "assign") ||
			strings.Contains(lower, "swap") || strings.Contains(lower, "replace") ||
			strings.Contains(lower, "set")):
		rec.Action = command.ActionChangeDriver.String()
		if m := driverNameRe.FindStringSubmatch(text); m != nil {
			rec.Parameters["driver_name"] = trimStopwords(m[1])
		}

	case strings.Contains(lower, "assign") || strings.Contains(lower, "add"):
		rec.Action = command.ActionAssignVehicle.String()
		if m := registrationRe.FindString(strings.ToUpper(text)); m != "" {
			rec.Parameters["registration"] = m
		}

	default:
		return command.IntentRecord{}, fmt.Errorf("%w: could not classify %q", command.ErrUnknownAction, text)
	}

	return rec, nil
}

// trimStopwords drops trailing filler words the name regex may overshoot
// into, e.g. "Ramesh to" from "change driver to Ramesh to trip 5".
func trimStopwords(name string) string {
	words := strings.Fields(name)
	for len(words) > 0 {
		switch strings.ToLower(words[len(words)-1]) {
		case "to", "for", "on", "from", "trip", "path", "route":
			words = words[:len(words)-1]
		default:
			return strings.Join(words, " ")
		}
	}
	return ""
}

func matchID(re *regexp.Regexp, text string) *int64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
