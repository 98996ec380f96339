package clip

import "io"

// channel enforces the TextChannel contract on top of a raw writer and a
// commit function.
type channel struct {
	w      io.Writer
	commit func() error
	n      int
	done   bool
}

func newChannel(w io.Writer, commit func() error) *channel {
	return &channel{w: w, commit: commit}
}

func (c *channel) Write(p []byte) (int, error) {
	if c.done {
		return 0, ErrChannelFinished
	}
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

func (c *channel) Finish() error {
	if c.done {
		return ErrChannelFinished
	}
	c.done = true
	return c.commit()
}
