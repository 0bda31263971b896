package synth

import "testing"

func TestAudioBuffer_EmptyReadsAsSilence(t *testing.T) {
	var b AudioBuffer
	if !b.IsEmpty() {
		t.Fatal("zero-value AudioBuffer should be empty")
	}
	b.WithRead(func(data []float32, ok bool) {
		if ok || data != nil {
			t.Fatalf("expected ok=false, data=nil on empty buffer, got ok=%v data=%v", ok, data)
		}
	})
}

func TestAudioBuffer_ResizePreservesIdentityWhenUnchanged(t *testing.T) {
	b := NewAudioBufferSize(8)
	before := b.state
	b.Resize(8)
	if b.state != before {
		t.Fatal("Resize to the same size must not reallocate")
	}
	b.Resize(16)
	if b.state == before {
		t.Fatal("Resize to a different size must reallocate")
	}
	if b.Len() != 16 {
		t.Fatalf("expected len 16, got %d", b.Len())
	}
}

func TestAudioBuffer_OldHandleSurvivesResize(t *testing.T) {
	b := NewAudioBufferSize(4)
	old := b
	old.WithWrite(func(data []float32) { data[0] = 7 })

	b.Resize(4)
	b.WithWrite(func(data []float32) { data[0] = 7 })

	b.Resize(8)

	old.WithRead(func(data []float32, ok bool) {
		if !ok || data[0] != 7 {
			t.Fatalf("old handle should still read its original 4-sample storage, got %v", data)
		}
	})
}

func TestAudioBuffer_WithWriteOnEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic writing to an empty AudioBuffer")
		}
	}()
	var b AudioBuffer
	b.WithWrite(func(data []float32) {})
}

func TestAudioBuffer_WithReadManyDedupesSharedState(t *testing.T) {
	shared := NewAudioBufferSize(2)
	shared.WithWrite(func(data []float32) { data[0], data[1] = 1, 2 })

	WithReadMany([]AudioBuffer{shared, shared, NewAudioBuffer()}, func(views [][]float32) {
		if len(views) != 3 {
			t.Fatalf("expected 3 views, got %d", len(views))
		}
		if views[0][0] != 1 || views[1][1] != 2 {
			t.Fatalf("unexpected view contents: %v", views)
		}
		if views[2] != nil {
			t.Fatalf("expected nil view for empty buffer, got %v", views[2])
		}
	})
}
