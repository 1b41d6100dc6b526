package imagegen

import (
	"bytes"
	"image/png"
	"testing"
	"time"
)

const advisory = "Environmental Condition Effects on Sensor Accuracy:\n" +
	"• CO Sensor: ±85.00% error\n" +
	"• H2 Sensor: ±102.50% error\n" +
	"• Dust Sensor: ±142.50% error\n" +
	"(at Temperature: 40°C, Humidity: 20%)" +
	"\n\nWARNING: High temperature may significantly affect sensor accuracy!"

func TestNewAdvisoryCard(t *testing.T) {
	card := NewAdvisoryCard("Upload flight.log", advisory)
	if card.Title != "Upload flight.log" {
		t.Errorf("Title = %q", card.Title)
	}
	if len(card.Lines) != 6 {
		t.Fatalf("len(Lines) = %d, want 6: %q", len(card.Lines), card.Lines)
	}
	if card.Lines[1] != "- CO Sensor: ±85.00% error" {
		t.Errorf("Lines[1] = %q", card.Lines[1])
	}
}

func TestRenderAdvisoryCard(t *testing.T) {
	data, err := RenderAdvisoryCard(NewAdvisoryCard("Upload flight.log", advisory))
	if err != nil {
		t.Fatalf("RenderAdvisoryCard: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != CardWidth || b.Dy() != CardHeight {
		t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), CardWidth, CardHeight)
	}
}

func TestCardCache(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewCardCache(time.Minute)
	c.now = func() time.Time { return now }

	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache returned a hit")
	}

	c.Set("a", []byte("png"))
	if got, ok := c.Get("a"); !ok || string(got) != "png" {
		t.Fatalf("Get(a) = %q, %v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("expired entry returned")
	}

	c.Set("b", []byte("png2"))
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 after eviction", c.Len())
	}
}
