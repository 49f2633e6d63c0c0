package chainreaction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestThresholdByPosition(t *testing.T) {
	require.Equal(t, byte(2), threshold(0, 0))
	require.Equal(t, byte(2), threshold(7, 7))
	require.Equal(t, byte(2), threshold(0, 7))
	require.Equal(t, byte(3), threshold(0, 4))
	require.Equal(t, byte(3), threshold(4, 0))
	require.Equal(t, byte(4), threshold(3, 3))
}

func TestTickExplodesCornerIntoNeighbors(t *testing.T) {
	var b Board
	b[0][0].SetCount(2)
	b[0][0].SetPlayer(1)

	result := b.tick()

	require.Equal(t, byte(0), result.board[0][0].Count())
	require.Equal(t, byte(0), result.board[0][0].Player())
	require.Equal(t, byte(1), result.board[0][1].Count())
	require.Equal(t, byte(1), result.board[0][1].Player())
	require.Equal(t, byte(1), result.board[1][0].Count())
	require.Equal(t, byte(1), result.board[1][0].Player())
	require.True(t, result.hasBoom)
}

func TestTickBelowThresholdIsNoOp(t *testing.T) {
	var b Board
	b[3][3].SetCount(3)
	b[3][3].SetPlayer(2)

	result := b.tick()

	require.Equal(t, byte(3), result.board[3][3].Count())
	require.False(t, result.hasBoom)
	require.Empty(t, result.changed)
}

func TestTickCascadesAreOrderIndependent(t *testing.T) {
	var b Board
	b[0][0].SetCount(2)
	b[0][0].SetPlayer(1)
	b[0][2].SetCount(2)
	b[0][2].SetPlayer(1)

	result := b.tick()

	// (0,1) sits between both exploding cells and receives a spread from each.
	require.Equal(t, byte(2), result.board[0][1].Count())
	require.Equal(t, byte(1), result.board[0][1].Player())
}

func TestPlayersAliveScansWholeBoard(t *testing.T) {
	var b Board
	b[0][0].SetCount(1)
	b[0][0].SetPlayer(1)
	b[7][7].SetCount(1)
	b[7][7].SetPlayer(2)

	alive := b.playersAlive(2)
	require.True(t, alive[1])
	require.True(t, alive[2])
	require.Len(t, alive, 2)
}
