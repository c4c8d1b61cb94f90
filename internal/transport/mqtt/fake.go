package mqtt

import "github.com/sweeney/steamboiler/internal/boiler"

// FakeTransport records published batches and lets a test script delivered
// incoming mailboxes, for use in place of RealTransport.
type FakeTransport struct {
	// Published records every (cycle, messages) pair sent via Publish.
	Published []PublishedBatch

	// SystemEvents records every event sent via PublishSystem.
	SystemEvents []SystemEvent

	// PublishError, if set, is returned by Publish.
	PublishError error

	// Closed tracks whether Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	incoming chan boiler.Mailbox
}

// PublishedBatch is one recorded call to Publish.
type PublishedBatch struct {
	Cycle    int64
	Messages []boiler.Message
}

// NewFakeTransport creates a FakeTransport with the given incoming channel
// buffer size.
func NewFakeTransport(bufferSize int) *FakeTransport {
	return &FakeTransport{incoming: make(chan boiler.Mailbox, bufferSize)}
}

// Publish records the batch.
func (f *FakeTransport) Publish(cycle int64, messages []boiler.Message) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Published = append(f.Published, PublishedBatch{Cycle: cycle, Messages: messages})
	return nil
}

// PublishSystem records the event.
func (f *FakeTransport) PublishSystem(event SystemEvent) error {
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// Deliver pushes a mailbox onto the Incoming channel, simulating a message
// received from the peer.
func (f *FakeTransport) Deliver(mb boiler.Mailbox) {
	f.incoming <- mb
}

// Incoming returns the channel of delivered mailboxes.
func (f *FakeTransport) Incoming() <-chan boiler.Mailbox {
	return f.incoming
}

// IsConnected reports the scripted connection state.
func (f *FakeTransport) IsConnected() bool {
	return f.Connected
}

// Close marks the transport closed.
func (f *FakeTransport) Close() error {
	f.Closed = true
	close(f.incoming)
	return nil
}
