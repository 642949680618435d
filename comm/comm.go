package comm

import "fmt"

// Comm is the point-to-point message passing contract consumed by the
// solver. Parallelism is across processes (or, in tests, goroutines);
// there is no shared memory between ranks. Send and Recv block, and a
// Recv matches exactly one Send of the same vector length.
type Comm interface {
	Rank() int
	Size() int
	// ColumnComm returns the sub-communicator grouping the ranks that
	// share Fourier planes of a homogeneous direction.
	ColumnComm() Comm
	Send(rank int, data []float64)
	Recv(rank int, data []float64)
}

// Serial is the single-process communicator.
type Serial struct{}

func NewSerial() *Serial { return &Serial{} }

func (c *Serial) Rank() int        { return 0 }
func (c *Serial) Size() int        { return 1 }
func (c *Serial) ColumnComm() Comm { return c }

func (c *Serial) Send(rank int, data []float64) {
	panic(fmt.Errorf("serial comm has no peer rank %d to send to", rank))
}

func (c *Serial) Recv(rank int, data []float64) {
	panic(fmt.Errorf("serial comm has no peer rank %d to receive from", rank))
}

// Group is an in-process communicator: a set of ranks joined by
// channels, one unbuffered-equivalent mailbox per ordered rank pair.
// Each member runs on its own goroutine.
type Group struct {
	rank  int
	peers []*Group
	boxes [][]chan []float64 // boxes[from][to]
}

// NewGroup creates size connected ranks.
func NewGroup(size int) (ranks []*Group) {
	if size < 1 {
		panic(fmt.Errorf("communicator size must be >= 1, have %d", size))
	}
	boxes := make([][]chan []float64, size)
	for i := range boxes {
		boxes[i] = make([]chan []float64, size)
		for j := range boxes[i] {
			boxes[i][j] = make(chan []float64, 1)
		}
	}
	ranks = make([]*Group, size)
	for i := 0; i < size; i++ {
		ranks[i] = &Group{rank: i, boxes: boxes}
	}
	for i := range ranks {
		ranks[i].peers = ranks
	}
	return
}

func (c *Group) Rank() int        { return c.rank }
func (c *Group) Size() int        { return len(c.peers) }
func (c *Group) ColumnComm() Comm { return c }

func (c *Group) Send(rank int, data []float64) {
	buf := make([]float64, len(data))
	copy(buf, data)
	c.boxes[c.rank][rank] <- buf
}

func (c *Group) Recv(rank int, data []float64) {
	buf := <-c.boxes[rank][c.rank]
	if len(buf) != len(data) {
		panic(fmt.Errorf("receive length mismatch: have %d, want %d", len(buf), len(data)))
	}
	copy(data, buf)
}
