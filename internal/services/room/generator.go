package room

import (
	"strconv"

	"github.com/mcoot/mogg-backend/internal/dependencies/random"
	"github.com/mcoot/mogg-backend/internal/model"
)

// DefaultMaxPasscodeAttempts bounds the number of draws per Generate call
const DefaultMaxPasscodeAttempts = 1000

// Generator draws room passcodes uniformly from the 5-digit keyspace
type Generator struct {
	random      random.Random
	maxAttempts int
}

// NewGenerator creates a Generator. A non-positive maxAttempts uses the default.
func NewGenerator(rnd random.Random, maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxPasscodeAttempts
	}
	return &Generator{
		random:      rnd,
		maxAttempts: maxAttempts,
	}
}

// Generate returns a passcode for which taken reports false, re-drawing on
// collision. It gives up with ErrPasscodesExhausted after maxAttempts draws.
func (g *Generator) Generate(taken func(model.Passcode) bool) (model.Passcode, error) {
	for range g.maxAttempts {
		n := model.PasscodeMin + g.random.Intn(model.PasscodeKeyspace)
		code := model.Passcode(strconv.Itoa(n))
		if !taken(code) {
			return code, nil
		}
	}
	return "", model.ErrPasscodesExhausted
}
