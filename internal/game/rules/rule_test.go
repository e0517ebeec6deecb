package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryPhaseHasParent(t *testing.T) {
	seen := make(map[MainPhase]int)
	for _, p := range AllPhases() {
		require.True(t, p.Known())
		main := p.Main()
		_, named := mainPhaseNames[main]
		assert.True(t, named, "phase %s has unnamed parent", p)
		seen[main]++
	}
	for main := MainPhaseSetup; main <= MainPhaseEnded; main++ {
		assert.Positive(t, seen[main], "main phase %s has no fine phases", main)
	}
	assert.Len(t, AllPhases(), len(phaseTable))
}

func TestPhasesOf(t *testing.T) {
	assert.Equal(t, []Phase{PhaseStormStart, PhaseDiallingStorm, PhaseStormReport}, PhasesOf(MainPhaseStorm))
	assert.Equal(t, []Phase{PhaseGameEnded}, PhasesOf(MainPhaseEnded))
}

func TestPhaseStrings(t *testing.T) {
	assert.Equal(t, "BIDDING", PhaseBidding.String())
	assert.Equal(t, "SHIPMENT_AND_MOVE", MainPhaseShipmentAndMove.String())
	assert.Equal(t, "PHASE_999", Phase(999).String())
	assert.False(t, Phase(999).Known())
	assert.True(t, PhaseBlowA.Automatic())
	assert.False(t, PhaseBidding.Automatic())
}

func TestVersionSupport(t *testing.T) {
	assert.False(t, Version(0).Supported())
	assert.True(t, MinVersion.Supported())
	assert.True(t, LatestVersion.Supported())
	assert.False(t, (LatestVersion + 1).Supported())
	assert.True(t, LatestVersion.AtLeast(VersionGuildRoundsUp))
	assert.False(t, Version(3).AtLeast(VersionGuildRoundsUp))
}

func TestRuleSetCanonical(t *testing.T) {
	set := NewRuleSet(RuleStormDeck, RuleAdvancedCombat, RuleStormDeck)
	assert.Equal(t, RuleSet{RuleAdvancedCombat, RuleStormDeck}, set)
	assert.True(t, set.Has(RuleStormDeck))
	assert.False(t, set.Has(RuleHomeworlds))
}

func TestRuleSetValidate(t *testing.T) {
	require.NoError(t, NewRuleSet(RuleHomeworlds, RuleHomeworldThresholds).Validate())

	err := NewRuleSet(RuleHomeworldThresholds).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires Homeworlds")

	err = NewRuleSet(RuleBlueWorthyCharity).Validate()
	require.Error(t, err)

	err = NewRuleSet(Rule("Bogus")).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown rule")
}

func TestApplicable(t *testing.T) {
	set := NewRuleSet(RuleStormDeck, RuleAdvancedCombat)
	assert.False(t, Applicable(set, RuleStormDeck, 1))
	assert.True(t, Applicable(set, RuleStormDeck, 2))
	assert.True(t, Applicable(set, RuleAdvancedCombat, 1))
	assert.False(t, Applicable(set, RuleSecondSpiceBlow, LatestVersion))
}

func TestAllRulesSorted(t *testing.T) {
	all := AllRules()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1], all[i])
	}
}
