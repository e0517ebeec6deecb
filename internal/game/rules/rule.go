package rules

import (
	"fmt"
	"slices"
)

// Version identifies an engine behaviour contract. Logs recorded under an
// older version replay with that version's behaviour.
type Version int

const (
	MinVersion    Version = 1
	LatestVersion Version = 4

	// VersionSkipFullHandBidders stops offering cards to players whose hand is full.
	VersionSkipFullHandBidders Version = 2
	// VersionFremenHalfStormLoss halves Fremen storm losses, rounding up.
	VersionFremenHalfStormLoss Version = 3
	// VersionGuildRoundsUp rounds the Guild's half-price shipment up.
	VersionGuildRoundsUp Version = 4
)

// Supported reports whether v is a version this engine can run.
func (v Version) Supported() bool {
	return v >= MinVersion && v <= LatestVersion
}

// AtLeast reports whether v includes the behaviour introduced at min.
func (v Version) AtLeast(min Version) bool {
	return v >= min
}

// Rule is an optional or advanced rule toggled per game.
type Rule string

const (
	RuleAdvancedCombat            Rule = "AdvancedCombat"
	RuleStormDeck                 Rule = "StormDeck"
	RuleSecondSpiceBlow           Rule = "SecondSpiceBlow"
	RuleAdvancedBeneGesserit      Rule = "AdvancedBeneGesserit"
	RuleBlueWorthyCharity         Rule = "BlueWorthyCharity"
	RuleOrangeDetermineMoveMoment Rule = "OrangeDetermineMoveMoment"
	RuleHomeworlds                Rule = "Homeworlds"
	RuleHomeworldThresholds       Rule = "HomeworldThresholds"
	RuleOpenDonations             Rule = "OpenDonations"
)

type ruleEntry struct {
	introduced Version
	requires   Rule
}

var ruleTable = map[Rule]ruleEntry{
	RuleAdvancedCombat:            {introduced: 1},
	RuleStormDeck:                 {introduced: 2},
	RuleSecondSpiceBlow:           {introduced: 1},
	RuleAdvancedBeneGesserit:      {introduced: 1},
	RuleBlueWorthyCharity:         {introduced: 1, requires: RuleAdvancedBeneGesserit},
	RuleOrangeDetermineMoveMoment: {introduced: 1},
	RuleHomeworlds:                {introduced: 3},
	RuleHomeworldThresholds:       {introduced: 3, requires: RuleHomeworlds},
	RuleOpenDonations:             {introduced: 2},
}

// Known reports whether r is a declared rule.
func (r Rule) Known() bool {
	_, ok := ruleTable[r]
	return ok
}

// Introduced returns the first version under which r has an effect.
func (r Rule) Introduced() Version {
	return ruleTable[r].introduced
}

// Requires returns the rule r depends on, or "" when it stands alone.
func (r Rule) Requires() Rule {
	return ruleTable[r].requires
}

// AllRules returns every declared rule, sorted.
func AllRules() []Rule {
	all := make([]Rule, 0, len(ruleTable))
	for r := range ruleTable {
		all = append(all, r)
	}
	slices.Sort(all)
	return all
}

// RuleSet is a sorted, duplicate-free set of enabled rules.
type RuleSet []Rule

// NewRuleSet builds a canonical set from rules.
func NewRuleSet(rs ...Rule) RuleSet {
	set := slices.Clone(rs)
	slices.Sort(set)
	return slices.Compact(set)
}

// Has reports whether r is enabled.
func (s RuleSet) Has(r Rule) bool {
	_, found := slices.BinarySearch(s, r)
	return found
}

// Validate checks that every rule is known and that prerequisites are present.
func (s RuleSet) Validate() error {
	for _, r := range s {
		if !r.Known() {
			return fmt.Errorf("unknown rule %q", r)
		}
		if req := r.Requires(); req != "" && !s.Has(req) {
			return fmt.Errorf("rule %s requires %s", r, req)
		}
	}
	return nil
}

// Applicable reports whether r is enabled in s and has effect under version v.
func Applicable(s RuleSet, r Rule, v Version) bool {
	return s.Has(r) && v.AtLeast(r.Introduced())
}
