package engine

import (
	"time"

	"golang.org/x/exp/rand"
)

// Deck hands out command cards during the programming phase
type Deck interface {
	Draw() *CommandCard
}

// RandomDeck draws every command with equal probability
type RandomDeck struct {
	rng *rand.Rand
}

// NewRandomDeck creates a deck seeded with seed; equal seeds give equal draws
func NewRandomDeck(seed uint64) *RandomDeck {
	return &RandomDeck{rng: rand.New(rand.NewSource(seed))}
}

// NewTimeSeededDeck creates a deck seeded from the clock
func NewTimeSeededDeck() *RandomDeck {
	return NewRandomDeck(uint64(time.Now().UnixNano()))
}

// Draw returns a new card with a uniformly chosen command
func (d *RandomDeck) Draw() *CommandCard {
	return NewCommandCard(Commands[d.rng.Intn(len(Commands))])
}

// SequenceDeck cycles through a fixed list of commands. It makes card draws
// predictable for scripted games.
type SequenceDeck struct {
	commands []Command
	next     int
}

// NewSequenceDeck creates a deck that repeats commands in order
func NewSequenceDeck(commands ...Command) *SequenceDeck {
	if len(commands) == 0 {
		commands = []Command{Forward}
	}
	return &SequenceDeck{commands: commands}
}

// Draw returns the next card in the sequence
func (d *SequenceDeck) Draw() *CommandCard {
	card := NewCommandCard(d.commands[d.next])
	d.next = (d.next + 1) % len(d.commands)
	return card
}
