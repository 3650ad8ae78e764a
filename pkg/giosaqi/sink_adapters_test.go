package giosaqi

import (
	"errors"
	"testing"
	"time"
)

func TestNewCallbackSink(t *testing.T) {
	var received []Sample
	sink := NewCallbackSink("cb", func(batch []Sample) error {
		received = append(received, batch...)
		return nil
	})

	input := Sample{
		SensorID:  "642",
		StationID: 114,
		Name:      "Kraków, Aleja Krasińskiego NO2",
		ParamCode: "NO2",
		Unit:      "µg/m3",
		Timestamp: time.Unix(1, 0),
		Seq:       42,
		Value:     3.1,
		Valid:     true,
	}

	if err := sink.WriteBatch([]*PipelineSample{input.toDomain()}); err != nil {
		t.Fatalf("WriteBatch returned error: %v", err)
	}
	if len(received) != 1 {
		t.Fatalf("expected 1 batch entry, got %d", len(received))
	}
	if received[0] != input {
		t.Fatalf("mismatched sample payload: %+v vs %+v", received[0], input)
	}
}

func TestNewCallbackSinkNilHandler(t *testing.T) {
	sink := NewCallbackSink("", nil)
	if sink.Name() != "callback" {
		t.Fatalf("expected default name, got %q", sink.Name())
	}
	s := Sample{SensorID: "s"}
	err := sink.WriteBatch([]*PipelineSample{s.toDomain()})
	if err == nil {
		t.Fatalf("expected error when callback is nil")
	}
}

func TestCallbackSinkPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	sink := NewCallbackSink("cb", func([]Sample) error { return boom })
	s := Sample{SensorID: "s"}
	if err := sink.WriteBatch([]*PipelineSample{s.toDomain()}); !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestNewChannelSink(t *testing.T) {
	sink, ch, closeFn := NewChannelSink("chan", 1)
	defer closeFn()

	input := Sample{SensorID: "sensor-2", Seq: 7}
	errCh := make(chan error, 1)

	go func() {
		errCh <- sink.WriteBatch([]*PipelineSample{input.toDomain()})
	}()

	var batch []Sample
	select {
	case batch = <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel batch")
	}

	if err := <-errCh; err != nil {
		t.Fatalf("WriteBatch returned error: %v", err)
	}
	if len(batch) != 1 || batch[0].SensorID != input.SensorID {
		t.Fatalf("unexpected batch data: %+v", batch)
	}

	closeFn()
	if err := sink.WriteBatch([]*PipelineSample{input.toDomain()}); !errors.Is(err, ErrChannelSinkClosed) {
		t.Fatalf("expected ErrChannelSinkClosed, got %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed")
	}
}

func TestChannelSinkCloseUnblocksWriter(t *testing.T) {
	sink, _, closeFn := NewChannelSink("chan", 0)
	s := Sample{SensorID: "s"}

	errCh := make(chan error, 1)
	go func() {
		errCh <- sink.WriteBatch([]*PipelineSample{s.toDomain()})
	}()

	time.Sleep(10 * time.Millisecond)
	closeFn()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrChannelSinkClosed) {
			t.Fatalf("expected ErrChannelSinkClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("writer still blocked after close")
	}
}
