package engine

// PruneHistory enforces the context budget by evicting the oldest
// conversation rounds. A round is an assistant message together with every
// tool-result message answering it; plain user or assistant messages form
// single-message rounds. Rounds are evicted whole so a tool result is never
// separated from the call it answers.
//
// The system message at index 0 is pinned. The most recent round is never
// evicted, so the history may stay above budget when one round alone
// exceeds it; that soft violation is preferred over broken pairing.
func PruneHistory(msgs []ChatMessage, max int) []ChatMessage {
	if max <= 0 || len(msgs) <= max {
		return msgs
	}

	pinned := 0
	if msgs[0].Role == RoleSystem {
		pinned = 1
	}

	rounds := splitRounds(msgs[pinned:])
	total := len(msgs)

	drop := 0
	for drop < len(rounds)-1 && total > max {
		total -= len(rounds[drop])
		drop++
	}
	if drop == 0 {
		return msgs
	}

	out := make([]ChatMessage, 0, total)
	out = append(out, msgs[:pinned]...)
	for _, round := range rounds[drop:] {
		out = append(out, round...)
	}
	return out
}

// splitRounds groups messages into eviction units. An assistant message
// opens a round; tool messages attach to the preceding round so call/result
// pairs stay together.
func splitRounds(msgs []ChatMessage) [][]ChatMessage {
	var rounds [][]ChatMessage
	for _, msg := range msgs {
		if msg.Role == RoleTool && len(rounds) > 0 {
			last := len(rounds) - 1
			rounds[last] = append(rounds[last], msg)
			continue
		}
		rounds = append(rounds, []ChatMessage{msg})
	}
	return rounds
}
