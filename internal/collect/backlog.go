package collect

// backlog keeps the most recent encoded frames so new feed clients start
// with some history.
type backlog struct {
	frames [][]byte
	size   int
	count  int
	head   int
}

func newBacklog(size int) *backlog {
	if size <= 0 {
		size = 1
	}
	return &backlog{frames: make([][]byte, size), size: size}
}

// add pushes a frame, evicting the oldest when full.
func (b *backlog) add(frame []byte) {
	if b.count < b.size {
		b.frames[(b.head+b.count)%b.size] = frame
		b.count++
		return
	}
	b.frames[b.head] = frame
	b.head = (b.head + 1) % b.size
}

// snapshot returns the frames oldest first.
func (b *backlog) snapshot() [][]byte {
	if b.count == 0 {
		return nil
	}
	out := make([][]byte, b.count)
	for i := range out {
		out[i] = b.frames[(b.head+i)%b.size]
	}
	return out
}
