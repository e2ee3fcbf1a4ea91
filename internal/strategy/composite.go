package strategy

import (
	"strings"

	"emaswitch-go/internal/signal"
)

// Composite runs several strategies over the same bars and emits their intents in member order.
// All members trade one account, so an intent from a later member may close a lot an earlier one opened.
type Composite struct {
	members []Strategy
}

// NewComposite wraps members; a single member is returned as is.
func NewComposite(members ...Strategy) Strategy {
	if len(members) == 1 {
		return members[0]
	}
	return &Composite{members: members}
}

// Name joins member names, e.g. BullishBar+BearishBar.
func (c *Composite) Name() string {
	names := make([]string, len(c.members))
	for i, m := range c.members {
		names[i] = m.Name()
	}
	return strings.Join(names, "+")
}

// Observe feeds bar to every member and concatenates the intents.
func (c *Composite) Observe(bar signal.Bar) []signal.Intent {
	var intents []signal.Intent
	for _, m := range c.members {
		intents = append(intents, m.Observe(bar)...)
	}
	return intents
}

var _ Strategy = (*Composite)(nil)
