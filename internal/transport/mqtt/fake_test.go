package mqtt

import (
	"errors"
	"testing"

	"github.com/sweeney/steamboiler/internal/boiler"
)

var errFakePublish = errors.New("fake publish failure")

func TestFakeTransportRecordsPublish(t *testing.T) {
	f := NewFakeTransport(1)
	msgs := []boiler.Message{boiler.WithMode(boiler.ModeNormal)}
	if err := f.Publish(3, msgs); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(f.Published) != 1 || f.Published[0].Cycle != 3 {
		t.Errorf("Published = %+v", f.Published)
	}
}

func TestFakeTransportDeliverRoundTrips(t *testing.T) {
	f := NewFakeTransport(1)
	mb := boiler.Mailbox{boiler.Simple(boiler.KindPhysicalUnitsReady)}
	f.Deliver(mb)
	got := <-f.Incoming()
	if len(got) != 1 || got[0].Kind != boiler.KindPhysicalUnitsReady {
		t.Errorf("got = %+v", got)
	}
}

func TestFakeTransportPublishError(t *testing.T) {
	f := NewFakeTransport(1)
	f.PublishError = errFakePublish
	if err := f.Publish(1, nil); err != errFakePublish {
		t.Errorf("Publish() error = %v, want errFakePublish", err)
	}
	if len(f.Published) != 0 {
		t.Errorf("Published = %+v, want none recorded on error", f.Published)
	}
}
