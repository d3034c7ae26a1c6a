package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/demonsim/internal/game/combat"
)

func TestParseStyle(t *testing.T) {
	for name, want := range map[string]combat.Style{
		"magic": combat.Magic, "Mage": combat.Magic,
		"RANGE": combat.Range, "ranged": combat.Range,
		" melee ": combat.Melee,
	} {
		got, err := combat.ParseStyle(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := combat.ParseStyle("necromancy")
	assert.ErrorIs(t, err, combat.ErrUnknownStyle)
}

func TestDamageType_Style(t *testing.T) {
	assert.Equal(t, combat.Melee, combat.Crush.Style())
	assert.Equal(t, combat.Range, combat.Bolt.Style())
	assert.Equal(t, combat.Magic, combat.Fire.Style())
	assert.Equal(t, combat.NoStyle, combat.NoDamageType.Style())
}

func TestParseDamageType_RoundTripsNames(t *testing.T) {
	for d := combat.Stab; d <= combat.NoDamageType; d++ {
		got, err := combat.ParseDamageType(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	_, err := combat.ParseDamageType("psychic")
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	cases := []struct {
		name     string
		offense  combat.DamageType
		weakness combat.DamageType
		want     combat.Affinity
	}{
		{"identical type", combat.Fire, combat.Fire, combat.ExtraWeak},
		{"same family magic", combat.Air, combat.Fire, combat.Neutral},
		{"same family range", combat.Arrow, combat.Bolt, combat.Neutral},
		{"magic beats melee", combat.Fire, combat.Slash, combat.Strong},
		{"melee beats range", combat.Stab, combat.Bolt, combat.Strong},
		{"range beats magic", combat.Bolt, combat.Fire, combat.Strong},
		{"melee into magic", combat.Crush, combat.Fire, combat.Weak},
		{"range into melee", combat.Bolt, combat.Slash, combat.Weak},
		{"magic into range", combat.Water, combat.Bolt, combat.Weak},
		{"no weakness", combat.Fire, combat.NoDamageType, combat.Paper},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, combat.Compare(tc.offense, tc.weakness))
		})
	}
}

func TestAffinity_Modifier(t *testing.T) {
	assert.Equal(t, 7.5, combat.Strong.Modifier())
	assert.Equal(t, 5.5, combat.Neutral.Modifier())
	assert.Equal(t, 4.0, combat.Weak.Modifier())
	assert.InDelta(t, 10.0/3.0, combat.ExtraWeak.Modifier(), 1e-12)
	assert.Equal(t, 0.0, combat.Paper.Modifier())
}
