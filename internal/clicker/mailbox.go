package clicker

import "context"

// newMailbox returns the two ends of an unbounded FIFO. Sends on in never
// wait for the receiver. out is closed once in is closed and the queue is
// drained, or as soon as ctx ends; pending values are dropped then.
func newMailbox[T any](ctx context.Context) (chan<- T, <-chan T) {
	in := make(chan T)
	out := make(chan T)
	go func() {
		defer close(out)
		var queue []T
		recv := (<-chan T)(in)
		for recv != nil || len(queue) > 0 {
			var (
				send chan<- T
				head T
			)
			if len(queue) > 0 {
				send, head = out, queue[0]
			}
			select {
			case <-ctx.Done():
				return
			case v, ok := <-recv:
				if !ok {
					recv = nil
					continue
				}
				queue = append(queue, v)
			case send <- head:
				var zero T
				queue[0] = zero
				queue = queue[1:]
			}
		}
	}()
	return in, out
}

// publish sends v on ch unless ctx ends first.
func publish[T any](ctx context.Context, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

// latest returns the newest value already waiting on ch, or s if none is.
func latest[T any](s T, ch <-chan T) T {
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return s
			}
			s = v
		default:
			return s
		}
	}
}
