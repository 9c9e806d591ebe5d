package board

import (
	"sort"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sanMoves(t *testing.T, fen string) []string {
	t.Helper()
	pos := mustFEN(t, fen)
	var out []string
	for _, m := range pos.LegalMoves() {
		out = append(out, pos.SAN(m))
	}
	return out
}

func TestSANCheckSuffixes(t *testing.T) {
	tests := []struct {
		fen  string
		want []string
	}{
		{"5k2/8/5K2/8/8/1Q6/8/8 w - - 0 1", []string{"Qb8#", "Qf7#", "Qg8+"}},
		{"4k3/8/8/8/8/8/8/4K2R w K - 0 1", []string{"O-O"}},
		{"5k2/8/8/8/8/8/8/4K2R w K - 0 1", []string{"O-O+"}},
		{"4rkr1/4p1p1/8/8/8/8/8/4K2R w K - 0 1", []string{"O-O#"}},
		{"4k3/8/8/8/8/8/8/R3K3 w Q - 0 1", []string{"O-O-O"}},
		{"3k4/8/8/8/8/8/8/R3K3 w Q - 0 1", []string{"O-O-O+"}},
		{"2rkr3/2p1p3/8/8/8/8/8/R3K3 w Q - 0 1", []string{"O-O-O#"}},
		{"4k2r/8/8/8/8/8/8/4K3 b k - 0 1", []string{"O-O"}},
		{"4k2r/8/8/8/8/8/8/5K2 b k - 0 1", []string{"O-O+"}},
		{"4k2r/8/8/8/8/8/4P1P1/4RKR1 b k - 0 1", []string{"O-O#"}},
		{"r3k3/8/8/8/8/8/8/4K3 b Kkq - 0 1", []string{"O-O-O"}},
		{"r3k3/8/8/8/8/8/8/3K4 b Kkq - 0 1", []string{"O-O-O+"}},
		{"r3k3/8/8/8/8/8/2P1P3/2RKR3 b q - 0 1", []string{"O-O-O#"}},
	}
	for _, tc := range tests {
		t.Run(tc.fen, func(t *testing.T) {
			moves := sanMoves(t, tc.fen)
			assert.Len(t, moves, len(dedupe(moves)))
			assert.Subset(t, moves, tc.want)
		})
	}
}

func dedupe(in []string) map[string]bool {
	out := map[string]bool{}
	for _, s := range in {
		out[s] = true
	}
	return out
}

func TestSANDisambiguation(t *testing.T) {
	tests := []struct {
		fen  string
		want []string
	}{
		{"4k3/8/8/8/8/8/8/1N2KN2 w - - 0 1", []string{"Nbd2", "Nfd2", "Na3", "Ng3"}},
		{"4k3/8/8/R7/8/8/8/R3K3 w - - 0 1", []string{"R1a3", "R5a3", "Rb1"}},
		{"4k3/8/8/8/8/Q7/8/Q1Q1K3 w - - 0 1", []string{"Qa1b2", "Q3b2", "Qcb2"}},
		{"2k5/8/8/5pP1/8/8/8/2K5 w - f6 0 1", []string{"gxf6", "g6"}},
		{"1n2k3/P7/8/8/8/8/8/4K3 w - - 0 1", []string{"a8=Q", "axb8=Q+", "axb8=N", "a8=R", "axb8=R+"}},
	}
	for _, tc := range tests {
		t.Run(tc.fen, func(t *testing.T) {
			assert.Subset(t, sanMoves(t, tc.fen), tc.want)
		})
	}
}

func TestSANMatchesReference(t *testing.T) {
	for _, fen := range []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	} {
		opt, err := chess.FEN(fen)
		require.NoError(t, err)
		game := chess.NewGame(opt)

		var want []string
		for _, m := range game.ValidMoves() {
			want = append(want, chess.AlgebraicNotation{}.Encode(game.Position(), m))
		}
		got := sanMoves(t, fen)

		sort.Strings(want)
		sort.Strings(got)
		assert.Equal(t, want, got, fen)
	}
}

func TestMatchMove(t *testing.T) {
	tests := []struct {
		fen  string
		text string
		want string // coordinate form, empty for no match
	}{
		{StartFEN, "e4", "e2e4"},
		{StartFEN, "e2e4", "e2e4"},
		{StartFEN, "e2-e4", "e2e4"},
		{StartFEN, "E2E4", "e2e4"},
		{StartFEN, "Nf3", "g1f3"},
		{StartFEN, "nf3", "g1f3"},
		{StartFEN, "Ng1f3", "g1f3"},
		{StartFEN, "Ng1-f3", "g1f3"},
		{StartFEN, "Nf3!?", "g1f3"},
		{StartFEN, " Nf3+ ", "g1f3"},
		{StartFEN, "Ke2", ""},
		{StartFEN, "e5", ""},
		{StartFEN, "O-O", ""},
		{StartFEN, "xyz", ""},
		{StartFEN, "", ""},
		{StartFEN, "Zf3", ""},
		{"r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1", "0-0", "e1g1"},
		{"r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1", "O-O-O", "e1c1"},
		{"r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1", "e1g1", "e1g1"},
		{"2k5/8/8/5pP1/8/8/8/2K5 w - f6 0 1", "gxf6 e.p.", "g5f6"},
		{"2k5/8/8/5pP1/8/8/8/2K5 w - f6 0 1", "gxf6ep", "g5f6"},
		{"2k5/8/8/5pP1/8/8/8/2K5 w - f6 0 1", "g5f6", "g5f6"},
		{"4k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a8=Q", "a7a8=q"},
		{"4k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a8Q+", "a7a8=q"},
		{"4k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a8=N", "a7a8=n"},
		{"4k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a7a8q", "a7a8=q"},
		{"4k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a7a8=R", "a7a8=r"},
		{"4k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a8", ""},
		{"4k3/8/8/8/8/8/8/1N2KN2 w - - 0 1", "Nd2", ""},
		{"4k3/8/8/8/8/8/8/1N2KN2 w - - 0 1", "Nbd2", "b1d2"},
		{"4k3/8/8/R7/8/8/8/R3K3 w - - 0 1", "R5a3", "a5a3"},
	}
	for _, tc := range tests {
		t.Run(tc.fen+" "+tc.text, func(t *testing.T) {
			m, ok := mustFEN(t, tc.fen).MatchMove(tc.text)
			if tc.want == "" {
				assert.False(t, ok, "matched %s", m)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tc.want, m.Coordinate())
		})
	}
}

func TestSANLineLeavesPositionUnchanged(t *testing.T) {
	pos := NewPosition()
	var moves []Move
	g, err := NewGame(StartFEN)
	require.NoError(t, err)
	for _, text := range []string{"e4", "e5", "Nf3", "Nc6", "Bb5"} {
		m, err := g.PushText(text)
		require.NoError(t, err)
		moves = append(moves, m)
	}
	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nc6", "Bb5"}, pos.SANLine(moves))
	assert.Equal(t, StartFEN, pos.FEN())
}
