package speech

// commonPrefix returns how many leading frames of the cached and new
// ancestor stacks denote the same fields. Comparison stops at the first
// mismatch.
func commonPrefix(old, next []*Field) int {
	n := min(len(old), len(next))
	for i := 0; i < n; i++ {
		if !SameField(old[i], next[i]) {
			return i
		}
	}
	return n
}

// exitedAncestors announces, innermost first, the cached ancestors beyond
// the common prefix. Reasons listed in Policy.SuppressExits announce
// nothing. Continuous reading breaks the utterance after leaving a block.
func (q *query) exitedAncestors(old []*Field, common int) Sequence {
	if q.policy.suppressesExits(q.reason) {
		return nil
	}
	var seq Sequence
	endingBlock := false
	for i := len(old) - 1; i >= common; i-- {
		seq = append(seq, q.fieldSpeech(old[i], old[:i], ModeEndRemovedFromStack)...)
		if !endingBlock && q.policy.isContinuous(q.reason) {
			endingBlock = old[i].IsBlock
		}
	}
	if endingBlock {
		seq = append(seq, EndUtteranceToken())
	}
	return seq
}
