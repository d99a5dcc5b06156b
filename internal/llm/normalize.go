package llm

import "iter"

// Normalize converts a raw provider sequence into a canonical one that
// honors the stream invariants regardless of upstream behavior:
//
//   - Done appears exactly once, as the last event.
//   - At most one Error appears, immediately before Done.
//   - Anything the upstream produces after its own terminal signal is
//     never pulled, so it cannot reach the consumer.
//
// It is a single pass with no buffering; because iterator composition is
// pull-based, a slow consumer throttles the upstream read and abandoning
// the canonical sequence stops the upstream one.
func Normalize(upstream iter.Seq2[Event, error]) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for ev, err := range upstream {
			if err != nil {
				msg, status := classify(err)
				if yield(ErrorEvent(msg, status)) {
					yield(Done())
				}
				return
			}
			switch ev.Kind {
			case KindDone:
				yield(Done())
				return
			case KindError:
				if yield(ev) {
					yield(Done())
				}
				return
			default:
				if !yield(ev) {
					return
				}
			}
		}
		// Upstream closed without any terminal signal.
		if yield(ErrorEvent("upstream closed unexpectedly", 0)) {
			yield(Done())
		}
	}
}
