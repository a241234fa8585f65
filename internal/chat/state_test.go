package chat

import (
	"sync"
	"testing"
)

func TestState_TakeStagedConsumesOnce(t *testing.T) {
	s := NewState()
	s.AddImage(UploadedImage{ArtifactID: "artifact_1"})
	s.SetCSV(&UploadedCSV{ArtifactID: "artifact_2"}, Dataset{Columns: []string{"a"}, NumRows: 3})
	s.SetInput("analyse this")

	images, csv, ids := s.TakeStaged()
	if len(images) != 1 || csv == nil || len(ids) != 2 {
		t.Fatalf("first take: images=%d csv=%v ids=%v", len(images), csv, ids)
	}

	images, csv, ids = s.TakeStaged()
	if len(images) != 0 || csv != nil || len(ids) != 0 {
		t.Error("second take must be empty")
	}

	snap := s.Snapshot()
	if snap.HasImages {
		t.Error("hasImages must clear with the staged list")
	}
	if snap.Input != "" {
		t.Error("input must clear on take")
	}
	// The dataset preview survives: follow-up questions about the same
	// data remain analysis turns.
	if snap.Dataset.Empty() {
		t.Error("dataset must survive the take")
	}
}

func TestState_RemoveArtifact(t *testing.T) {
	s := NewState()
	s.AddImage(UploadedImage{ArtifactID: "artifact_a"})
	s.AddImage(UploadedImage{ArtifactID: "artifact_b"})
	s.SetCSV(&UploadedCSV{ArtifactID: "artifact_c"}, Dataset{Columns: []string{"x"}})

	s.RemoveArtifact("artifact_a")
	snap := s.Snapshot()
	if len(snap.Images) != 1 || snap.Images[0].ArtifactID != "artifact_b" {
		t.Errorf("unexpected images after remove: %v", snap.Images)
	}
	if !snap.HasImages {
		t.Error("one image left, flag must hold")
	}

	s.RemoveArtifact("artifact_b")
	if s.HasImages() {
		t.Error("flag must clear with the last image")
	}

	s.RemoveArtifact("artifact_c")
	snap = s.Snapshot()
	if snap.CSV != nil || !snap.Dataset.Empty() {
		t.Error("removing the csv must clear its dataset")
	}
	if len(snap.ArtifactIDs) != 0 {
		t.Errorf("ids not pruned: %v", snap.ArtifactIDs)
	}
}

func TestState_RemoveUnknownArtifactIsNoop(t *testing.T) {
	s := NewState()
	s.AddImage(UploadedImage{ArtifactID: "artifact_a"})
	s.RemoveArtifact("artifact_zzz")
	if !s.HasImages() {
		t.Error("unrelated remove must not touch staged images")
	}
}

func TestState_ResetForSession(t *testing.T) {
	s := NewState()
	s.SetSessionID("old")
	s.AppendMessage(Message{ID: "m1"})
	s.SetInput("draft")
	s.SetError("boom")
	s.SetPending(true)
	s.AddImage(UploadedImage{ArtifactID: "artifact_1"})
	s.SetProgress("f.png", 40)

	msgs := []Message{{ID: "h0"}, {ID: "h1"}}
	s.ResetForSession("new", msgs, Dataset{Columns: []string{"c"}}, &UploadedCSV{ArtifactID: "artifact_h"})

	snap := s.Snapshot()
	if snap.SessionID != "new" {
		t.Errorf("session id = %q", snap.SessionID)
	}
	if len(snap.Messages) != 2 {
		t.Errorf("messages = %d", len(snap.Messages))
	}
	if snap.Input != "" || snap.Error != "" || snap.Pending {
		t.Error("draft fields must clear")
	}
	if snap.HasImages || len(snap.ArtifactIDs) != 0 {
		t.Error("staged uploads must clear")
	}
	if len(snap.Progress) != 0 {
		t.Error("progress must clear")
	}
	if snap.Dataset.Empty() || snap.CSV == nil {
		t.Error("history-derived dataset must install")
	}
}

func TestState_SnapshotIsolation(t *testing.T) {
	s := NewState()
	s.AppendMessage(Message{ID: "m1", Content: "one"})

	snap := s.Snapshot()
	snap.Messages[0].Content = "mutated"
	snap.Progress["x"] = 1

	if s.Messages()[0].Content != "one" {
		t.Error("snapshot mutation leaked into state")
	}
}

func TestState_ProgressLifecycle(t *testing.T) {
	s := NewState()
	s.SetProgress("a.png", 10)
	s.SetProgress("b.png", 90)
	s.ClearProgress("a.png")

	snap := s.Snapshot()
	if _, ok := snap.Progress["a.png"]; ok {
		t.Error("cleared entry still present")
	}
	if snap.Progress["b.png"] != 90 {
		t.Error("unrelated entry lost")
	}

	s.ClearAllProgress()
	if len(s.Snapshot().Progress) != 0 {
		t.Error("batch clear left entries")
	}
}

func TestState_ConcurrentAccess(t *testing.T) {
	s := NewState()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.AppendMessage(Message{ID: "m"})
			s.SetProgress("f", 1)
		}()
		go func() {
			defer wg.Done()
			s.Snapshot()
			s.TakeStaged()
		}()
	}
	wg.Wait()
}
